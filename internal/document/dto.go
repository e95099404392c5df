// AngelaMos | 2026
// dto.go

package document

import (
	"time"
)

// UploadRequest is the non-file part of the multipart upload form.
type UploadRequest struct {
	ClientID    string  `json:"client_id"   validate:"required,uuid"`
	ProjectID   *string `json:"project_id"  validate:"omitempty,uuid"`
	Title       string  `json:"title"       validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    string  `json:"category"    validate:"required,oneof=contracts drawings permits invoices reports photos other"`
	Tags        string  `json:"tags"        validate:"omitempty,max=500"`
}

type ListParams struct {
	Page      int
	PageSize  int
	ClientID  string
	ProjectID string
	Category  string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type DocumentResponse struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	ProjectID   *string   `json:"project_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	FileType    string    `json:"file_type"`
	IsPhoto     bool      `json:"is_photo"`
	CreatedAt   time.Time `json:"created_at"`
}

type DownloadResponse struct {
	URL       string    `json:"url"`
	FileName  string    `json:"file_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func ToResponse(d *Document) DocumentResponse {
	tags := []string(d.Tags)
	if tags == nil {
		tags = []string{}
	}
	return DocumentResponse{
		ID:          d.ID,
		ClientID:    d.ClientID,
		ProjectID:   d.ProjectID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Tags:        tags,
		FileName:    d.FileName,
		FileSize:    d.FileSize,
		FileType:    d.FileType,
		IsPhoto:     d.IsPhoto(),
		CreatedAt:   d.CreatedAt,
	}
}

func ToResponseList(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, ToResponse(&docs[i]))
	}
	return out
}
