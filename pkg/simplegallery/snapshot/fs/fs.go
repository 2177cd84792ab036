// Package fs provides a filesystem-backed snapshot store.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tendant/simple-gallery/pkg/simplegallery/snapshot"
)

// Config options for the filesystem store
type Config struct {
	BaseDir string // Base directory for storing snapshots
}

// Store is a filesystem implementation of the snapshot.Store interface
type Store struct {
	baseDir string
}

// New creates a new filesystem snapshot store
func New(config Config) (snapshot.Store, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Store{baseDir: config.BaseDir}, nil
}

func (s *Store) Write(ctx context.Context, key string, reader io.Reader) error {
	filePath := filepath.Join(s.baseDir, key)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(s.baseDir, key))
	if os.IsNotExist(err) {
		return nil, snapshot.ErrSnapshotNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	filePath := filepath.Join(s.baseDir, key)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return snapshot.ErrSnapshotNotFound
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

func (s *Store) List(ctx context.Context) ([]snapshot.Info, error) {
	var infos []snapshot.Info
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		key, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		infos = append(infos, snapshot.Info{
			Key:       filepath.ToSlash(key),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return infos, nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (s *Store) cleanupEmptyDirectories(dir string) {
	if dir == s.baseDir {
		return
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			s.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
