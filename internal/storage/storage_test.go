// AngelaMos | 2026
// storage_test.go

package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/studio-portal/internal/core"
)

func TestObjectKey(t *testing.T) {
	project := "p-1"

	key := ObjectKey("c-1", &project, "Site Plan (rev 2).pdf")
	assert.True(t, strings.HasPrefix(key, "clients/c-1/p-1/"))
	assert.True(t, strings.HasSuffix(key, "-Site_Plan_rev_2_.pdf"))

	key = ObjectKey("c-1", nil, "contract.pdf")
	assert.True(t, strings.HasPrefix(key, "clients/c-1/general/"))
}

func TestSafeFileName(t *testing.T) {
	tests := map[string]string{
		"../../etc/passwd":    "passwd",
		`C:\Users\x\plan.dwg`: "plan.dwg",
		"...":                 "file",
		"photo 01.JPG":        "photo_01.JPG",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeFileName(in), in)
	}

	long := strings.Repeat("a", 200) + ".pdf"
	got := SafeFileName(long)
	assert.Len(t, got, 120)
	assert.True(t, strings.HasSuffix(got, ".pdf"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("bucket", time.Minute)
	ctx := context.Background()

	_, err := store.DownloadURL(ctx, "missing", "x.pdf")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, store.Put(ctx, Object{Key: "k", ContentType: "application/pdf"}, strings.NewReader("pdf")))
	u, err := store.DownloadURL(ctx, "k", "x.pdf")
	require.NoError(t, err)
	assert.Contains(t, u, "memory://bucket/k?")

	data, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "pdf", string(data))

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok = store.Get("k")
	assert.False(t, ok)
}
