package ports

import (
	"context"

	"github.com/aretw0/pixelpilot/pkg/domain"
)

// VisionProvider samples the screen. Providers without a working backend return
// errors wrapping domain.ErrUnavailable.
type VisionProvider interface {
	Name() string
	SamplePixel(ctx context.Context, x, y int) (domain.Color, error)
	// SearchRegion returns the first point in region within tolerance of target.
	SearchRegion(ctx context.Context, region domain.Rect, target domain.Color, tolerance int) (domain.Point, bool, error)
}

// Mouse buttons accepted by InputProvider.Click.
const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"
)

// InputProvider injects keyboard and mouse input and reports key state.
type InputProvider interface {
	Name() string
	IsKeyDown(ctx context.Context, key string) (bool, error)
	PressKey(ctx context.Context, key string) error
	Click(ctx context.Context, x, y int, button string) error
	MovePointer(ctx context.Context, x, y int) error
}
