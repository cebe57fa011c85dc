// Package blob archives rendered receipts in object storage.
package blob

import (
	"context"
	"fmt"
	"sync"
)

type Store interface {
	// Put writes data under key and returns a location for it.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Config struct {
	Driver            string // none | memory | gcs | s3
	Bucket            string
	GoogleCredentials string
	S3Region          string
	S3Endpoint        string
	S3PathStyle       bool
}

// New returns nil with no error when archiving is disabled.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemory(), nil
	case "gcs":
		g, err := NewGCS(ctx, cfg.Bucket, cfg.GoogleCredentials)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "s3":
		s, err := NewS3(ctx, S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.Bucket,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported RECEIPT_STORE %q", cfg.Driver)
	}
}

type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}}
}

func (m *Memory) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[key] = cp
	return "memory://" + key, nil
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}

func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
