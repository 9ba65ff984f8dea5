package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
)

// MockBackend is an in-memory implementation of KVBackend for testing purposes.
type MockBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMockBackend() *MockBackend {
	return &MockBackend{data: make(map[string][]byte)}
}

func (m *MockBackend) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return v, nil
}

func (m *MockBackend) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MockBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockBackend) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

func (m *MockBackend) Keys(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func TestKVBackend_Contract(t *testing.T) {
	// The contract suite must hold for the simplest possible backend before
	// it is used to certify the real adapters.
	ports.RunKVBackendContract(t, NewMockBackend())
}

func TestAuthFuncs_NilSafe(t *testing.T) {
	var a ports.AuthFuncs
	a.OnUnauthorized()
	a.OnForbidden()

	called := ""
	a = ports.AuthFuncs{Forbidden: func() { called = "forbidden" }}
	a.OnForbidden()
	if called != "forbidden" {
		t.Errorf("expected forbidden callback, got %q", called)
	}
}
