package blocks

import (
	"context"
	"time"

	"github.com/aretw0/pixelpilot/pkg/ports"
)

// Env carries the collaborators a block may use during one tick.
// Now is frozen for the whole tick.
type Env struct {
	State  ports.StateStore
	Vision ports.VisionProvider
	Input  ports.InputProvider
	Now    time.Time
}

// Condition senses the environment.
type Condition interface {
	Evaluate(ctx context.Context, env Env) (bool, error)
}

// Resetter is implemented by conditions that keep state which should be cleared
// after the owning rule or node fires.
type Resetter interface {
	Reset(ctx context.Context, env Env) error
}

// Action performs a side effect.
type Action interface {
	Execute(ctx context.Context, env Env) error
}

// Inputs holds the values of a logic block's input ports. Unconnected ports read false.
type Inputs map[string]bool

// Logic combines boolean signals.
//
// Compute may be called several times per tick while the graph relaxes and must
// not mutate the block. Commit is called once per tick with the settled inputs
// and is where stateful blocks (timers, flip-flops) advance.
type Logic interface {
	Ports() []string
	Compute(in Inputs, now time.Time) bool
	Commit(in Inputs, now time.Time)
}

type stateless struct{}

func (stateless) Commit(Inputs, time.Time) {}
