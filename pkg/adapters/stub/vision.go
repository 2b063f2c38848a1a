// Package stub provides deterministic capability providers for headless runs
// and tests.
package stub

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/pixelpilot/pkg/domain"
)

// Vision returns a fixed sentinel color for every pixel unless an override is
// set for that coordinate. Overrides may be changed while the engine runs.
type Vision struct {
	mu       sync.RWMutex
	sentinel domain.Color
	pixels   map[domain.Point]domain.Color
	err      error
	samples  int
}

// NewVision creates a stub that reports sentinel everywhere.
func NewVision(sentinel domain.Color) *Vision {
	return &Vision{
		sentinel: sentinel,
		pixels:   make(map[domain.Point]domain.Color),
	}
}

func (v *Vision) Name() string { return "stub" }

// SetSentinel changes the color reported for pixels without an override.
func (v *Vision) SetSentinel(c domain.Color) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sentinel = c
}

// SetPixel overrides a single coordinate.
func (v *Vision) SetPixel(x, y int, c domain.Color) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pixels[domain.Point{X: x, Y: y}] = c
}

// ClearPixels removes every override.
func (v *Vision) ClearPixels() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pixels = make(map[domain.Point]domain.Color)
}

// FailWith makes every call return err until called again with nil.
func (v *Vision) FailWith(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.err = err
}

// Samples returns the number of SamplePixel calls served.
func (v *Vision) Samples() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.samples
}

func (v *Vision) SamplePixel(ctx context.Context, x, y int) (domain.Color, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return domain.Color{}, v.err
	}
	v.samples++
	if c, ok := v.pixels[domain.Point{X: x, Y: y}]; ok {
		return c, nil
	}
	return v.sentinel, nil
}

// SearchRegion scans overrides inside region in row-major order, then falls
// back to the sentinel at the region origin.
func (v *Vision) SearchRegion(ctx context.Context, region domain.Rect, target domain.Color, tolerance int) (domain.Point, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.err != nil {
		return domain.Point{}, false, v.err
	}
	if region.Empty() {
		return domain.Point{}, false, nil
	}

	hits := make([]domain.Point, 0)
	for p, c := range v.pixels {
		if region.Contains(p) && c.Matches(target, tolerance) {
			hits = append(hits, p)
		}
	}
	if len(hits) > 0 {
		sort.Slice(hits, func(i, j int) bool {
			if hits[i].Y != hits[j].Y {
				return hits[i].Y < hits[j].Y
			}
			return hits[i].X < hits[j].X
		})
		return hits[0], true, nil
	}

	origin := domain.Point{X: region.X, Y: region.Y}
	if _, overridden := v.pixels[origin]; !overridden && v.sentinel.Matches(target, tolerance) {
		return origin, true, nil
	}
	return domain.Point{}, false, nil
}
