// Package snapshot persists gallery documents as JSON blobs. A Store holds
// opaque snapshot objects; the Manager handles serialization and key naming
// on top of whichever backend is configured.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/tendant/simple-gallery/pkg/simplegallery"
)

// ErrSnapshotNotFound is returned when the requested snapshot object does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Info describes a stored snapshot object.
type Info struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a backend for snapshot objects.
type Store interface {
	// Write stores the object under the given key, replacing any previous object.
	Write(ctx context.Context, key string, reader io.Reader) error
	// Read opens the object for reading. The caller must close the returned reader.
	Read(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object.
	Delete(ctx context.Context, key string) error
	// List returns info for all stored objects.
	List(ctx context.Context) ([]Info, error)
}

// Manager serializes documents into a Store.
type Manager struct {
	store Store
	now   func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the clock used to derive snapshot keys.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager backed by the given store.
func NewManager(store Store, options ...Option) *Manager {
	m := &Manager{store: store, now: time.Now}
	for _, option := range options {
		option(m)
	}
	return m
}

// snapshotKey derives an object key whose lexicographic order matches
// creation order.
func (m *Manager) snapshotKey() string {
	return fmt.Sprintf("snapshots/%s.json", m.now().UTC().Format("20060102T150405.000"))
}

// Save serializes the document and writes it under a fresh timestamped key.
// It returns the key of the written snapshot.
func (m *Manager) Save(ctx context.Context, doc *simplegallery.Document) (string, error) {
	if doc == nil {
		return "", errors.New("nil document")
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	key := m.snapshotKey()
	if err := m.store.Write(ctx, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write snapshot %q: %w", key, err)
	}
	return key, nil
}

// Load reads and decodes the snapshot stored under key.
func (m *Manager) Load(ctx context.Context, key string) (*simplegallery.Document, error) {
	reader, err := m.store.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var doc simplegallery.Document
	if err := json.NewDecoder(reader).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", simplegallery.ErrMalformedImport, err)
	}
	return &doc, nil
}

// Latest returns the most recently written snapshot, or ErrSnapshotNotFound
// when the store is empty.
func (m *Manager) Latest(ctx context.Context) (*simplegallery.Document, string, error) {
	infos, err := m.store.List(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(infos) == 0 {
		return nil, "", ErrSnapshotNotFound
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key > infos[j].Key })
	doc, err := m.Load(ctx, infos[0].Key)
	if err != nil {
		return nil, "", err
	}
	return doc, infos[0].Key, nil
}

// Prune deletes all but the newest keep snapshots.
func (m *Manager) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	infos, err := m.store.List(ctx)
	if err != nil {
		return err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key > infos[j].Key })

	for _, info := range infos[min(keep, len(infos)):] {
		if err := m.store.Delete(ctx, info.Key); err != nil {
			return fmt.Errorf("prune snapshot %q: %w", info.Key, err)
		}
	}
	return nil
}
