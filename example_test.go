package pixelpilot_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/pixelpilot"
	"github.com/aretw0/pixelpilot/pkg/adapters/memory"
	"github.com/aretw0/pixelpilot/pkg/adapters/stub"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/graph"
)

func ExampleEngine_Step() {
	vision := stub.NewVision(domain.White)
	input := stub.NewInput()
	eng, err := pixelpilot.New(vision, input, memory.NewStore())
	if err != nil {
		log.Fatal(err)
	}

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

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		rep, _ := eng.Step(ctx)
		fmt.Println(rep.Tick, rep.Fired)
	}
	vision.SetSentinel(domain.Black)
	rep, _ := eng.Step(ctx)
	fmt.Println(rep.Tick, rep.Fired)
	fmt.Println("presses:", input.Presses("space"))

	// Output:
	// 1 [space]
	// 2 [space]
	// 3 []
	// presses: 2
}

func ExampleEngine_AddRuleSpec() {
	eng, err := pixelpilot.New(stub.NewVision(domain.Black), stub.NewInput(), memory.NewStore())
	if err != nil {
		log.Fatal(err)
	}

	_, err = eng.AddRuleSpec(domain.RuleSpec{
		ID:         "count",
		Conditions: []domain.BlockSpec{{Type: "constant", Config: map[string]any{"value": true}}},
		Actions:    []domain.BlockSpec{{Type: "increment", Config: map[string]any{"key": "n", "delta": 5}}},
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	_, _ = eng.Step(ctx)
	_, _ = eng.Step(ctx)

	v, _, _ := eng.State().Get(ctx, "n")
	fmt.Println(v)

	// Output:
	// 10
}
