package testutil

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/kbukum/tabkit/component"
)

// File is one response served by a FileServer.
type File struct {
	Body   []byte
	Status int
}

// FileServer serves in-memory files over HTTP. Unknown paths answer 404.
type FileServer struct {
	mu    sync.RWMutex
	files map[string]File
	srv   *httptest.Server
	hits  atomic.Int64
}

var _ TestComponent = (*FileServer)(nil)

// NewFileServer creates a stopped file server.
func NewFileServer() *FileServer {
	return &FileServer{files: make(map[string]File)}
}

// Put serves body with status 200 at path.
func (s *FileServer) Put(path string, body []byte) {
	s.PutFile(path, File{Body: body, Status: http.StatusOK})
}

// PutFile serves f at path.
func (s *FileServer) PutFile(path string, f File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = f
}

// URL returns the absolute URL of path. The server must be started.
func (s *FileServer) URL(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.srv == nil {
		return ""
	}
	return s.srv.URL + path
}

// Hits returns the number of requests served since the last Reset.
func (s *FileServer) Hits() int64 { return s.hits.Load() }

func (s *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	s.mu.RLock()
	f, ok := s.files[r.URL.Path]
	s.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	if f.Status == 0 {
		f.Status = http.StatusOK
	}
	w.WriteHeader(f.Status)
	_, _ = w.Write(f.Body)
}

// Name returns the component name.
func (s *FileServer) Name() string { return "fileserver-test" }

// Start begins serving on a loopback port.
func (s *FileServer) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return fmt.Errorf("component already started")
	}
	s.srv = httptest.NewServer(s)
	return nil
}

// Stop shuts the server down.
func (s *FileServer) Stop(_ context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()
	if srv != nil {
		srv.Close()
	}
	return nil
}

// Health reports whether the server is running.
func (s *FileServer) Health(_ context.Context) component.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.srv == nil {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

// Reset removes all files and clears the hit counter.
func (s *FileServer) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]File)
	s.hits.Store(0)
	return nil
}

// Snapshot returns a copy of the served files.
func (s *FileServer) Snapshot(_ context.Context) (interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.files), nil
}

// Restore replaces the served files with a snapshot.
func (s *FileServer) Restore(_ context.Context, snap interface{}) error {
	files, ok := snap.(map[string]File)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected map[string]File, got %T", snap)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = maps.Clone(files)
	return nil
}
