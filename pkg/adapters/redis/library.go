package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/pixelpilot/pkg/ports"
	"github.com/aretw0/pixelpilot/pkg/schema"
	backend "github.com/redis/go-redis/v9"
)

// Library implements ports.GraphRepository in Redis. Each document is a JSON
// string under <prefix>graph:<name>; a sorted set indexes the names.
type Library struct {
	client *backend.Client
	prefix string
}

// NewLibrary creates a graph library sharing the store's key prefix.
func NewLibrary(client *backend.Client, prefix string) *Library {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Library{client: client, prefix: prefix}
}

func (l *Library) key(name string) string {
	return l.prefix + "graph:" + name
}

func (l *Library) indexKey() string {
	return l.prefix + "graphs"
}

// Save persists the document as JSON and indexes its name.
func (l *Library) Save(ctx context.Context, name string, doc *schema.Document) error {
	if name == "" {
		return fmt.Errorf("graph name is required")
	}
	data, err := schema.Encode(doc, schema.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal graph %s: %w", name, err)
	}

	pipe := l.client.TxPipeline()
	pipe.Set(ctx, l.key(name), data, 0)
	// Score 0 for every member: ZRANGE then returns names lexicographically.
	pipe.ZAdd(ctx, l.indexKey(), backend.Z{Score: 0, Member: name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save graph %s to redis: %w", name, err)
	}
	return nil
}

// Load retrieves a document by name.
func (l *Library) Load(ctx context.Context, name string) (*schema.Document, error) {
	val, err := l.client.Get(ctx, l.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", ports.ErrGraphNotFound, name)
		}
		return nil, fmt.Errorf("failed to get graph %s from redis: %w", name, err)
	}
	return schema.Decode(val)
}

// List returns the stored names in sorted order.
func (l *Library) List(ctx context.Context) ([]string, error) {
	names, err := l.client.ZRange(ctx, l.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	return names, nil
}

// Delete removes a document and its index entry.
func (l *Library) Delete(ctx context.Context, name string) error {
	pipe := l.client.TxPipeline()
	pipe.Del(ctx, l.key(name))
	pipe.ZRem(ctx, l.indexKey(), name)
	_, err := pipe.Exec(ctx)
	return err
}
