package store

import "fmt"

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendKuzu   = "kuzu"
)

// Open returns an empty Store for the named backend. An empty name selects
// the memory backend.
func Open(backend string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemStore(), nil
	case BackendKuzu:
		return openKuzu()
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}
