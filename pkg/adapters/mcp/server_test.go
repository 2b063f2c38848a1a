package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/pixelpilot"
	"github.com/aretw0/pixelpilot/pkg/adapters/memory"
	"github.com/aretw0/pixelpilot/pkg/adapters/stub"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Engine = (*pixelpilot.Engine)(nil)

func newTestServer(t *testing.T) (*Server, *pixelpilot.Engine, *stub.Input) {
	t.Helper()
	input := stub.NewInput()
	eng, err := pixelpilot.New(stub.NewVision(domain.White), input, memory.NewStore(), pixelpilot.WithTargetHz(200))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Stop() })
	return NewServer(eng, "test"), eng, input
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestBuildGraphAndStep(t *testing.T) {
	s, eng, input := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleAddNode(ctx, call(map[string]any{
		"id": "white", "kind": "input", "type": "pixel_color",
		"config": `{"x": 3, "y": 4, "target_rgb": "#ffffff"}`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Equal(t, "white", text(t, res))

	res, err = s.handleAddNode(ctx, call(map[string]any{
		"id": "space", "kind": "output", "type": "key_press", "config": `{"key": "space"}`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	res, err = s.handleAddLink(ctx, call(map[string]any{"from_node": "white", "to_node": "space", "to_port": "Trig"}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Equal(t, "linked white.Out -> space.Trig", text(t, res))

	step, err := s.handleStep(ctx, call(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), step.Tick)
	assert.Equal(t, []string{"space"}, step.Fired)
	assert.Empty(t, step.Faults)
	assert.Equal(t, 1, input.Presses("space"))

	res, err = s.handleGetGraph(ctx, call(nil))
	require.NoError(t, err)
	var doc struct {
		Nodes []domain.NodeSpec `json:"nodes"`
		Links []domain.Link     `json:"links"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &doc))
	assert.Len(t, doc.Nodes, 2)
	assert.Len(t, doc.Links, 1)

	res, err = s.handleRemoveLink(ctx, call(map[string]any{"from_node": "white", "to_node": "space", "to_port": "Trig"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	res, err = s.handleRemoveNode(ctx, call(map[string]any{"id": "white"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, 1, eng.Status().Nodes)
}

func TestToolErrors(t *testing.T) {
	s, _, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleAddNode(ctx, call(map[string]any{"kind": "sideways", "type": "and"}))
	require.NoError(t, err, "tool failures are results, not protocol errors")
	assert.True(t, res.IsError)

	res, err = s.handleAddNode(ctx, call(map[string]any{"kind": "input", "type": "pixel_color", "config": "{"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "config must be a JSON object")

	res, err = s.handleRemoveNode(ctx, call(map[string]any{"id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "remove_node failed")

	res, err = s.handleRemoveRule(ctx, call(map[string]any{"id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestEngineLifecycleTools(t *testing.T) {
	s, eng, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleStart(ctx, call(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.True(t, eng.IsRunning())

	res, err = s.handleStart(ctx, call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError, "second start is rejected")

	_, err = s.handleStep(ctx, call(nil), nil)
	assert.ErrorIs(t, err, domain.ErrEngineRunning)

	res, err = s.handleStop(ctx, call(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"running":false`)

	res, err = s.handleStatus(ctx, call(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"target_hz":200`)
}

func TestRuleAndStateTools(t *testing.T) {
	s, eng, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleAddRule(ctx, call(map[string]any{
		"rule": `{"id":"armed","conditions":[{"type":"state_equals","config":{"key":"armed","value":true}}],"actions":[{"type":"increment","config":{"key":"n"}}]}`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Equal(t, "armed", text(t, res))

	_, err = eng.Step(ctx)
	require.NoError(t, err)
	res, err = s.handleGetState(ctx, call(map[string]any{"key": "n"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "rule did not fire before armed")

	res, err = s.handleSetState(ctx, call(map[string]any{"key": "armed", "value": "true"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"armed","value":true}`, text(t, res))

	_, err = eng.Step(ctx)
	require.NoError(t, err)
	res, err = s.handleGetState(ctx, call(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"armed":true,"n":1}`, text(t, res))

	res, err = s.handleSetState(ctx, call(map[string]any{"key": " ", "value": "1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestResources(t *testing.T) {
	s, eng, _ := newTestServer(t)
	_, err := eng.AddRuleSpec(domain.RuleSpec{
		ID:         "r1",
		Conditions: []domain.BlockSpec{{Type: "constant"}},
		Actions:    []domain.BlockSpec{{Type: "key_press", Config: map[string]any{"key": "f"}}},
	})
	require.NoError(t, err)

	contents, err := jsonResource(GraphURI, eng.Document(""))
	require.NoError(t, err)
	require.Len(t, contents, 1)
	trc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", trc.MIMEType)
	assert.Contains(t, trc.Text, `"id":"r1"`)
	assert.NotNil(t, s.MCPServer())
}
