package bootstrap

import (
	"context"
	"log"
	"sync"
)

// SchemaStore is the slice of the project repository the initializer needs.
type SchemaStore interface {
	TableExists(ctx context.Context) (bool, error)
	EnsureSchema(ctx context.Context) error
}

// Initializer makes sure the projects table exists before the first request
// that needs it. The check runs at most once per process: the flag flips on
// failure too, so a degraded store is not hammered on every request. Best
// effort throughout; failures are logged and the instance keeps serving.
type Initializer struct {
	store SchemaStore

	mu   sync.Mutex
	done bool
}

func NewInitializer(store SchemaStore) *Initializer {
	return &Initializer{store: store}
}

// Ensure runs the schema check if it has not run yet in this process.
func (i *Initializer) Ensure(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.done {
		return
	}
	i.done = true

	exists, err := i.store.TableExists(ctx)
	if err != nil {
		log.Printf("[bootstrap] table check failed, continuing degraded: %v", err)
		return
	}
	if exists {
		log.Println("[bootstrap] database schema already exists")
		return
	}

	if err := i.store.EnsureSchema(ctx); err != nil {
		log.Printf("[bootstrap] schema creation failed, continuing degraded: %v", err)
		return
	}
	log.Println("[bootstrap] database schema created")
}
