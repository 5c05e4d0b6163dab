package ui

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/renderinc/qna-board/internal/qna"
)

// DefaultPreviewPrefix is where the web front end serves previews
const DefaultPreviewPrefix = "/previews/"

// PreviewStore hands out URLs for staged images until they are revoked
type PreviewStore struct {
	prefix string

	mu    sync.RWMutex
	files map[string]*qna.ImageFile
}

// NewPreviewStore creates a store whose URLs start with prefix
func NewPreviewStore(prefix string) *PreviewStore {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &PreviewStore{prefix: prefix, files: make(map[string]*qna.ImageFile)}
}

// Create registers f and returns its preview URL
func (p *PreviewStore) Create(f *qna.ImageFile) string {
	id := uuid.NewString()
	p.mu.Lock()
	p.files[id] = f
	p.mu.Unlock()
	return p.prefix + id
}

// Revoke releases the preview behind url. Unknown URLs are ignored.
func (p *PreviewStore) Revoke(url string) {
	id, ok := strings.CutPrefix(url, p.prefix)
	if !ok {
		return
	}
	p.mu.Lock()
	delete(p.files, id)
	p.mu.Unlock()
}

// Get returns the image registered under id
func (p *PreviewStore) Get(id string) (*qna.ImageFile, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.files[id]
	return f, ok
}

// Len is the number of live previews
func (p *PreviewStore) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.files)
}
