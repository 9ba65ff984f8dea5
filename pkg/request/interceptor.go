package request

import (
	"context"
	"sync"

	"github.com/aretw0/conduit/pkg/domain"
)

// RequestInterceptor rewrites an outgoing request (headers, body, auth).
// Returning an error aborts the request.
type RequestInterceptor func(ctx context.Context, spec domain.RequestSpec) (domain.RequestSpec, error)

// ResponseInterceptor transforms a successful envelope, typically its Data.
type ResponseInterceptor func(ctx context.Context, resp domain.Response) (domain.Response, error)

// Unregister removes a previously registered interceptor. Calling it twice is a no-op.
type Unregister func()

// registry is an ordered list of interceptors that can be snapshotted per attempt,
// so removals never affect a request already past that stage.
type registry[F any] struct {
	mu      sync.RWMutex
	nextID  uint64
	entries []registryEntry[F]
}

type registryEntry[F any] struct {
	id uint64
	fn F
}

func (r *registry[F]) add(fn F) Unregister {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.entries = append(r.entries, registryEntry[F]{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *registry[F]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

func (r *registry[F]) snapshot() []F {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]F, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.fn
	}
	return out
}

func (r *registry[F]) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *registry[F]) reset() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

// BearerToken returns a request interceptor that sets the Authorization header
// from token at request time. An empty token leaves the request untouched.
func BearerToken(token func() string) RequestInterceptor {
	return func(ctx context.Context, spec domain.RequestSpec) (domain.RequestSpec, error) {
		t := token()
		if t == "" {
			return spec, nil
		}
		if spec.Headers == nil {
			spec.Headers = map[string]string{}
		}
		spec.Headers["Authorization"] = "Bearer " + t
		return spec, nil
	}
}

// UnwrapData returns a response interceptor that replaces a JSON object body with
// the value of its field when present, e.g. {"data": [...]} becomes [...].
func UnwrapData(field string) ResponseInterceptor {
	return func(ctx context.Context, resp domain.Response) (domain.Response, error) {
		obj, ok := resp.Data.Object()
		if !ok {
			return resp, nil
		}
		if inner, ok := obj[field]; ok {
			resp.Data = domain.JSONBody(inner)
		}
		return resp, nil
	}
}
