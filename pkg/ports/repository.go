package ports

import (
	"context"
	"errors"

	"github.com/aretw0/pixelpilot/pkg/schema"
)

// ErrGraphNotFound is returned when a named graph does not exist in a repository.
var ErrGraphNotFound = errors.New("graph not found")

// GraphRepository stores graph documents by name.
type GraphRepository interface {
	Save(ctx context.Context, name string, doc *schema.Document) error
	// Load returns ErrGraphNotFound for unknown names.
	Load(ctx context.Context, name string) (*schema.Document, error)
	// List returns the stored names in sorted order.
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}
