// AngelaMos | 2026
// service.go

package document

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/project"
	"github.com/angelamos/studio-portal/internal/storage"
)

type ClientLookup interface {
	Get(ctx context.Context, id string) (*client.Client, error)
}

type ProjectLookup interface {
	GetForClient(ctx context.Context, clientID, id string) (*project.Project, error)
}

// Upload is one file handed over by the upload form.
type Upload struct {
	UploadRequest
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service struct {
	repo       Repository
	store      storage.Store
	clients    ClientLookup
	projects   ProjectLookup
	maxBytes   int64
	presignTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

type ServiceConfig struct {
	Repo       Repository
	Store      storage.Store
	Clients    ClientLookup
	Projects   ProjectLookup
	MaxBytes   int64
	PresignTTL time.Duration
	Logger     *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       cfg.Repo,
		store:      cfg.Store,
		clients:    cfg.Clients,
		projects:   cfg.Projects,
		maxBytes:   cfg.MaxBytes,
		presignTTL: cfg.PresignTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores the bytes first and the metadata second. A metadata
// failure removes the stored object again.
func (s *Service) Upload(ctx context.Context, up Upload) (*Document, error) {
	if up.Size <= 0 {
		return nil, core.FieldErrors{"file": "file is empty"}
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return nil, core.FieldErrors{
			"file": fmt.Sprintf("file must be at most %d bytes", s.maxBytes),
		}
	}

	if _, err := s.clients.Get(ctx, up.ClientID); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	projectID := up.ProjectID
	if projectID != nil && *projectID == "" {
		projectID = nil
	}
	if projectID != nil {
		if _, err := s.projects.GetForClient(ctx, up.ClientID, *projectID); err != nil {
			return nil, core.FieldErrors{"project_id": "project does not belong to this client"}
		}
	}

	body, contentType, err := sniff(up.Body, up.ContentType)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	d := &Document{
		ID:          uuid.New().String(),
		ClientID:    up.ClientID,
		ProjectID:   projectID,
		Title:       strings.TrimSpace(up.Title),
		Description: up.Description,
		Category:    up.Category,
		Tags:        ParseTags(up.Tags),
		FilePath:    storage.ObjectKey(up.ClientID, projectID, up.FileName),
		FileName:    storage.SafeFileName(up.FileName),
		FileSize:    up.Size,
		FileType:    contentType,
	}

	obj := storage.Object{
		Key:         d.FilePath,
		Size:        d.FileSize,
		ContentType: d.FileType,
		Metadata: map[string]string{
			"document-id": d.ID,
			"client-id":   d.ClientID,
		},
	}
	if err := s.store.Put(ctx, obj, body); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.discard(ctx, d.FilePath)
		return nil, err
	}

	s.logger.Info("document uploaded",
		"document_id", d.ID,
		"client_id", d.ClientID,
		"category", d.Category,
		"size", d.FileSize,
	)
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Document, int, error) {
	return s.repo.List(ctx, params)
}

// ListForClient is the portal read path; see Repository.ListForClient.
func (s *Service) ListForClient(ctx context.Context, clientID string, projectID *string) ([]Document, error) {
	return s.repo.ListForClient(ctx, clientID, projectID)
}

// Delete removes the metadata and then the object. A leftover object is
// logged and otherwise ignored.
func (s *Service) Delete(ctx context.Context, id string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.discard(ctx, d.FilePath)
	return nil
}

// DownloadURL signs a link for a document the client owns. Documents of
// other clients are reported as not found.
func (s *Service) DownloadURL(ctx context.Context, clientID, id string) (*DownloadResponse, error) {
	if err := core.RequireID("get client document", id); err != nil {
		return nil, err
	}
	d, err := s.repo.GetForClient(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	return s.sign(ctx, d)
}

func (s *Service) AdminDownloadURL(ctx context.Context, id string) (*DownloadResponse, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.sign(ctx, d)
}

func (s *Service) sign(ctx context.Context, d *Document) (*DownloadResponse, error) {
	url, err := s.store.DownloadURL(ctx, d.FilePath, d.FileName)
	if err != nil {
		return nil, fmt.Errorf("sign document %s: %w", d.ID, err)
	}
	return &DownloadResponse{
		URL:       url,
		FileName:  d.FileName,
		ExpiresAt: s.now().Add(s.presignTTL).UTC(),
	}, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("failed to delete stored object",
			"key", key,
			"error", err,
		)
	}
}

// sniff fills in a missing or generic content type from the first bytes.
func sniff(body io.Reader, declared string) (io.Reader, string, error) {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return body, declared, nil
	}

	br := bufio.NewReaderSize(body, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, "", err
	}
	return br, http.DetectContentType(head), nil
}
