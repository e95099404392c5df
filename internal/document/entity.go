// AngelaMos | 2026
// entity.go

package document

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	CategoryContracts = "contracts"
	CategoryDrawings  = "drawings"
	CategoryPermits   = "permits"
	CategoryInvoices  = "invoices"
	CategoryReports   = "reports"
	CategoryPhotos    = "photos"
	CategoryOther     = "other"
)

var Categories = []string{
	CategoryContracts,
	CategoryDrawings,
	CategoryPermits,
	CategoryInvoices,
	CategoryReports,
	CategoryPhotos,
	CategoryOther,
}

// Document is file metadata. The bytes live in object storage under
// FilePath and never pass through this package after upload.
type Document struct {
	ID          string    `db:"id"`
	ClientID    string    `db:"client_id"`
	ProjectID   *string   `db:"project_id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	Category    string    `db:"category"`
	Tags        Tags      `db:"tags"`
	FilePath    string    `db:"file_path"`
	FileName    string    `db:"file_name"`
	FileSize    int64     `db:"file_size"`
	FileType    string    `db:"file_type"`
	CreatedAt   time.Time `db:"created_at"`
}

func (d *Document) IsPhoto() bool {
	return d.Category == CategoryPhotos || strings.HasPrefix(d.FileType, "image/")
}

// ClientLevel documents are visible under every project of the client.
func (d *Document) ClientLevel() bool {
	return d.ProjectID == nil
}

// Photos keeps the photo documents, preserving order.
func Photos(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for i := range docs {
		if docs[i].IsPhoto() {
			out = append(out, docs[i])
		}
	}
	return out
}

// Tags is stored as a JSONB array.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}
	*t = out
	return nil
}

// ParseTags splits a comma separated form value, dropping blanks and
// duplicates.
func ParseTags(raw string) Tags {
	seen := map[string]struct{}{}
	tags := Tags{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
