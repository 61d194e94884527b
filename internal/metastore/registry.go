package metastore

import (
	"fmt"
	"sync"
)

// Factory constructs a metastore client for a URL.
type Factory func(url string) (Client, error)

// Registry owns metastore client lifecycle, constructing one client per
// URL and handing out the shared instance afterwards. It replaces the
// implicit module-level client cache with an injected dependency: callers
// receive a registry, never a global.
type Registry struct {
	mu      sync.Mutex
	factory Factory
	clients map[string]Client
}

// NewRegistry creates a registry using factory to build clients.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		clients: make(map[string]Client),
	}
}

// GetOrCreate returns the client for url, constructing it on first use.
// Construction failures are not cached; a later call retries.
func (r *Registry) GetOrCreate(url string) (Client, error) {
	if url == "" {
		return nil, fmt.Errorf("metastore: empty url")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[url]; ok {
		return client, nil
	}

	client, err := r.factory(url)
	if err != nil {
		return nil, fmt.Errorf("metastore: create client for %s: %w", url, err)
	}
	r.clients[url] = client
	return client, nil
}

// Len returns the number of constructed clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
