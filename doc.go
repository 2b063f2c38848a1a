/*
Package pixelpilot is a real-time graph execution engine for screen-driven input automation.

A workflow is a graph of typed blocks. Input blocks sense the screen and the keyboard, Process blocks combine boolean signals, and Output blocks press keys, click, or update a shared state store. A fixed-rate scheduler evaluates the graph every tick while the graph can still be edited from other goroutines.

# Concept

PixelPilot never touches the desktop directly. Vision and input backends are injected as capability providers, so the same graph runs against real hardware, a deterministic stub, or a remote adapter. The engine owns only the graph, the legacy rule list and the tick loop.

# Key Features

  - Fixed-rate loop: ticks never queue up; an overrunning tick is counted and the next one starts immediately.
  - Cycles allowed: feedback loops are relaxed for a bounded number of passes instead of being rejected.
  - Live editing: nodes, links and rules may be changed while the engine runs.
  - Fault isolation: a failing block or provider degrades to false for that tick and is reported as an event.

# Usage

	package main

	import (
		"context"
		"log"
		"time"

		"github.com/aretw0/pixelpilot"
		"github.com/aretw0/pixelpilot/pkg/adapters/memory"
		"github.com/aretw0/pixelpilot/pkg/adapters/stub"
		"github.com/aretw0/pixelpilot/pkg/domain"
		"github.com/aretw0/pixelpilot/pkg/graph"
	)

	func main() {
		eng, err := pixelpilot.New(stub.NewVision(domain.White), stub.NewInput(), memory.NewStore())
		if err != nil {
			log.Fatal(err)
		}

		// Press space whenever pixel (10, 10) is white.
		err = eng.MutateAll([]graph.Op{
			graph.AddNode(domain.NodeSpec{ID: "white", Kind: domain.KindInput, Type: "pixel_color",
				Config: map[string]any{"x": 10, "y": 10, "target_rgb": "#ffffff"}}),
			graph.AddNode(domain.NodeSpec{ID: "space", Kind: domain.KindOutput, Type: "key_press",
				Config: map[string]any{"key": "space"}}),
			graph.AddLink(domain.Link{FromNode: "white", FromPort: "Out", ToNode: "space", ToPort: "Trig"}),
		})
		if err != nil {
			log.Fatal(err)
		}

		if err := eng.Start(context.Background()); err != nil {
			log.Fatal(err)
		}
		time.Sleep(time.Second)
		_ = eng.Stop()
	}
*/
package pixelpilot
