// Package memory provides an in-memory snapshot store for development and testing.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/tendant/simple-gallery/pkg/simplegallery/snapshot"
)

type object struct {
	data      []byte
	updatedAt time.Time
}

// Store is an in-memory implementation of the snapshot.Store interface
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory snapshot store
func New() snapshot.Store {
	return &Store{objects: make(map[string]object)}
}

func (s *Store) Write(ctx context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{data: data, updatedAt: time.Now().UTC()}
	return nil
}

func (s *Store) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, exists := s.objects[key]
	if !exists {
		return nil, snapshot.ErrSnapshotNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; !exists {
		return snapshot.ErrSnapshotNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *Store) List(ctx context.Context) ([]snapshot.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]snapshot.Info, 0, len(s.objects))
	for key, obj := range s.objects {
		infos = append(infos, snapshot.Info{
			Key:       key,
			Size:      int64(len(obj.data)),
			UpdatedAt: obj.updatedAt,
		})
	}
	return infos, nil
}
