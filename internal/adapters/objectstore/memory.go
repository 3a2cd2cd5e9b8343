package objectstore

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // ETag parity with S3, not security
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
)

var _ core.ObjectStore = (*MemoryStore)(nil)

// MemoryStore keeps objects in process memory. It backs local runs without
// an S3 endpoint and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memObject)}
}

// Put stores a copy of the body.
func (m *MemoryStore) Put(ctx context.Context, params core.PutObjectParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return fmt.Errorf("read object body: %w", err)
	}
	m.mu.Lock()
	m.objects[params.Key] = memObject{data: data, contentType: params.ContentType}
	m.mu.Unlock()
	return nil
}

// Get returns a reader over the stored bytes.
func (m *MemoryStore) Get(ctx context.Context, key string) (*core.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, core.ErrObjectNotFound)
	}
	sum := md5.Sum(obj.data) //nolint:gosec // see import
	return &core.Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		ETag:        hex.EncodeToString(sum[:]),
	}, nil
}

// Delete removes key.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len reports how many objects are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
