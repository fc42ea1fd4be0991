// Package storage persists product images. Uploads arrive as base64
// payloads embedded in the product body; the store keeps them under a
// key that the catalog records on the product row.
package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImageStore is the collaborator the catalog uses for product images.
type ImageStore interface {
	// Save decodes a base64 payload (with or without a data-URI
	// prefix) and stores it under fileName, returning the key to keep
	// on the product.
	Save(fileName, base64Payload string) (string, error)
	// Delete removes a stored image by key. Missing keys are not an
	// error.
	Delete(key string) error
}

// DiskImageStore keeps images on the local filesystem.
type DiskImageStore struct {
	dir string
}

func NewDiskImageStore(dir string) (*DiskImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image dir: %w", err)
	}
	return &DiskImageStore{dir: dir}, nil
}

func (s *DiskImageStore) Save(fileName, base64Payload string) (string, error) {
	// Data URIs carry a "data:image/png;base64," prefix.
	if i := strings.IndexByte(base64Payload, ','); i >= 0 {
		base64Payload = base64Payload[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(base64Payload)
	if err != nil {
		return "", fmt.Errorf("decoding image payload: %w", err)
	}

	name := filepath.Base(fileName) // no path traversal via the client-supplied name
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return "/images/" + name, nil
}

func (s *DiskImageStore) Delete(key string) error {
	name := filepath.Base(key)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
