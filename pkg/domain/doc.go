/*
Package domain contains the core models of the PixelPilot engine.

It defines the vocabulary shared by the graph, the block catalogue, the scheduler and
every adapter. The package is pure: it performs no I/O and has no dependencies
outside the standard library.

# Key Entities

  - Value: a tagged shared-state value (bool, int, float or string).
  - Color, Point, Rect: screen sampling primitives used by vision conditions.
  - NodeSpec and Link: the persisted description of a block graph.
  - Event: a diagnostic emitted by the scheduler (tick timing, faults, provider errors).
  - Typed errors: ConfigurationError, ProviderError, EvaluationFault, ConcurrencyViolation.
*/
package domain
