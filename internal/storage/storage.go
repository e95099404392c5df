// AngelaMos | 2026
// storage.go

package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/studio-portal/internal/core"
)

// Store holds opaque document bytes. Only keys and metadata cross into
// the rest of the service.
type Store interface {
	Put(ctx context.Context, obj Object, body io.Reader) error
	Delete(ctx context.Context, key string) error
	// DownloadURL signs a time-limited GET. A missing object yields
	// core.ErrNotFound rather than a URL that would 404 later.
	DownloadURL(ctx context.Context, key, fileName string) (string, error)
	Ping(ctx context.Context) error
}

type Object struct {
	Key         string
	Size        int64
	ContentType string
	Metadata    map[string]string
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey places a file under its owning client, and project when set.
func ObjectKey(clientID string, projectID *string, fileName string) string {
	scope := "general"
	if projectID != nil && *projectID != "" {
		scope = *projectID
	}
	return path.Join("clients", clientID, scope, uuid.New().String()+"-"+SafeFileName(fileName))
}

func SafeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "._")
	if name == "" {
		return "file"
	}
	if len(name) > 120 {
		ext := path.Ext(name)
		name = name[:120-len(ext)] + ext
	}
	return name
}

type memoryObject struct {
	obj  Object
	data []byte
}

// MemoryStore keeps objects in process, for local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	ttl     time.Duration
	objects map[string]memoryObject
}

func NewMemoryStore(bucket string, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		ttl:     ttl,
		objects: make(map[string]memoryObject),
	}
}

func (m *MemoryStore) Put(_ context.Context, obj Object, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	obj.Size = int64(len(data))

	m.mu.Lock()
	m.objects[obj.Key] = memoryObject{obj: obj, data: data}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) DownloadURL(_ context.Context, key, fileName string) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("download url %s: %w", key, core.ErrNotFound)
	}

	q := url.Values{}
	q.Set("filename", fileName)
	q.Set("expires", time.Now().Add(m.ttl).UTC().Format(time.RFC3339))
	return "memory://" + m.bucket + "/" + key + "?" + q.Encode(), nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o.data, ok
}
