/*
Package ports defines the driven ports (interfaces) of the PixelPilot engine.

These interfaces decouple graph evaluation from concrete backends: real or stubbed
screen capture, input injection, in-process or Redis shared state, and the various
places graph documents are stored.

# Key Interfaces

  - StateStore: the shared key/value store read and written by blocks.
  - VisionProvider / InputProvider: capability providers used by conditions and actions.
  - EventSink: receives scheduler diagnostics (logging, metrics, SSE).
  - GraphRepository: named storage for graph documents (file, sqlite, memory).
  - DistributedLocker: single-instance guard for engines sharing a desktop.
*/
package ports
