package middleware_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/aretw0/conduit/pkg/adapters/memory"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/persistence/middleware"
	"github.com/aretw0/conduit/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func wrap(t *testing.T, cfg middleware.EncryptionConfig, b ports.KVBackend) ports.KVBackend {
	t.Helper()
	mw, err := middleware.NewEncryption(cfg)
	if err != nil {
		t.Fatalf("NewEncryption failed: %v", err)
	}
	return middleware.Chain(b, mw)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	key := generateKey(t)
	ports.RunKVBackendContract(t, wrap(t, middleware.EncryptionConfig{ActiveKey: key}, memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := wrap(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	ctx := context.Background()
	secret := []byte(`{"id":"proj-1","name":"my-secret-sauce"}`)

	if err := secure.Set(ctx, "currentProject", secret); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	stored, err := underlying.Get(ctx, "currentProject")
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	if bytes.Contains(stored, []byte("my-secret-sauce")) {
		t.Fatal("Expected value to be sealed in the backend")
	}

	loaded, err := secure.Get(ctx, "currentProject")
	if err != nil {
		t.Fatalf("Get via middleware failed: %v", err)
	}
	if !bytes.Equal(loaded, secret) {
		t.Errorf("Expected %s, got %s", secret, loaded)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	if err := wrap(t, middleware.EncryptionConfig{ActiveKey: oldKey}, underlying).Set(ctx, "k", []byte("old")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	rotated := wrap(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}}, underlying)
	got, err := rotated.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get with fallback key failed: %v", err)
	}
	if string(got) != "old" {
		t.Errorf("Expected 'old', got %q", got)
	}

	withoutFallback := wrap(t, middleware.EncryptionConfig{ActiveKey: newKey}, underlying)
	if _, err := withoutFallback.Get(ctx, "k"); err == nil {
		t.Fatal("Expected decryption to fail without the old key")
	}
}

func TestEncryptionMiddleware_MissingKeyPassesThrough(t *testing.T) {
	secure := wrap(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore())
	if _, err := secure.Get(context.Background(), "absent"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestEncryptionMiddleware_InvalidKeys(t *testing.T) {
	if _, err := middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: []byte("short")}); err == nil {
		t.Fatal("Expected error for short active key")
	}
	cfg := middleware.EncryptionConfig{ActiveKey: generateKey(t), FallbackKeys: [][]byte{[]byte("x")}}
	if _, err := middleware.NewEncryption(cfg); err == nil {
		t.Fatal("Expected error for short fallback key")
	}
}

func TestEncryptionMiddleware_TamperedValue(t *testing.T) {
	underlying := memory.NewStore()
	secure := wrap(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	ctx := context.Background()

	if err := secure.Set(ctx, "k", []byte("value")); err != nil {
		t.Fatal(err)
	}
	sealed, _ := underlying.Get(ctx, "k")
	sealed[len(sealed)-1] ^= 0xff
	_ = underlying.Set(ctx, "k", sealed)

	if _, err := secure.Get(ctx, "k"); err == nil {
		t.Fatal("Expected tampered value to be rejected")
	}
}
