package http

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Fault is one injected failure.
type Fault struct {
	Status     int
	RetryAfter string
	Body       string
	// Delay stalls the response before it is written (or before the real handler runs
	// when Status is zero), so clients can observe their own timeouts.
	Delay time.Duration
}

// Faults injects failures ahead of the real handlers: queued faults are served
// first, in order, then each request fails with probability Rate.
type Faults struct {
	mu     sync.Mutex
	queue  []Fault
	Rate   float64
	Random Fault
}

// Enqueue appends n copies of f to the queue.
func (f *Faults) Enqueue(fault Fault, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.queue = append(f.queue, fault)
	}
}

// Pending reports how many queued faults are left.
func (f *Faults) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

func (f *Faults) next() (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) > 0 {
		fault := f.queue[0]
		f.queue = f.queue[1:]
		return fault, true
	}
	if f.Rate > 0 && rand.Float64() < f.Rate {
		fault := f.Random
		if fault.Status == 0 {
			fault.Status = http.StatusServiceUnavailable
		}
		return fault, true
	}
	return Fault{}, false
}

// Middleware serves the next fault, if any, instead of the wrapped handler.
func (f *Faults) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fault, ok := f.next()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if fault.Delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(fault.Delay):
			}
		}
		if fault.Status == 0 {
			next.ServeHTTP(w, r)
			return
		}
		if fault.RetryAfter != "" {
			w.Header().Set("Retry-After", fault.RetryAfter)
		}
		body := fault.Body
		if body == "" {
			body = `{"error":` + strconv.Quote(http.StatusText(fault.Status)) + `}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fault.Status)
		_, _ = w.Write([]byte(body))
	})
}
