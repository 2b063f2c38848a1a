package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/pixelpilot/pkg/ports"
	"github.com/aretw0/pixelpilot/pkg/schema"
)

// Library implements ports.GraphRepository using an in-memory map.
// Documents are stored encoded so callers never share maps with the library.
type Library struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{docs: make(map[string][]byte)}
}

// NewLibraryFrom creates a library pre-populated with documents.
// This handles serialization automatically, improving DX for tests.
func NewLibraryFrom(docs map[string]*schema.Document) (*Library, error) {
	l := NewLibrary()
	for name, doc := range docs {
		if err := l.Save(context.Background(), name, doc); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Library) Save(ctx context.Context, name string, doc *schema.Document) error {
	if name == "" {
		return fmt.Errorf("graph name is required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal graph %s: %w", name, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.docs[name] = data
	return nil
}

func (l *Library) Load(ctx context.Context, name string) (*schema.Document, error) {
	l.mu.RLock()
	data, ok := l.docs[name]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrGraphNotFound, name)
	}
	return schema.Decode(data)
}

func (l *Library) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.docs))
	for k := range l.docs {
		names = append(names, k)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}

func (l *Library) Delete(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.docs, name)
	return nil
}
