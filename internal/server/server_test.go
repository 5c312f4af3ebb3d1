package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/creds"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/model"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/recorder"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/store"
)

const pageSnapshot = `- main:
  - heading "Your Cart" [level=1]
  - button "Checkout" [ref=e7]
`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	credsPath := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(credsPath, []byte(
		"shop.example:\n  email: buyer@example.com\n  password: hunter2\n  loginUrl: https://shop.example/login\n"), 0o600))

	s, err := New(
		recorder.New(nil),
		store.New(t.TempDir(), 0, nil),
		creds.NewFileProvider(credsPath),
		nil,
	)
	require.NoError(t, err)
	return s
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

// The advertised catalog is the wire contract; a drifted name here breaks
// every connected client.
func TestToolCatalog(t *testing.T) {
	s := newTestServer(t)

	want := []string{
		"get_login_credentials",
		"login_to_site",
		"workflow_fetch",
		"workflow_list",
		"workflow_record_action",
		"workflow_record_snapshot",
		"workflow_record_start",
		"workflow_record_stop",
	}
	got := s.ToolNames()
	sort.Strings(got)
	assert.Equal(t, want, got)
}

func TestRecordAndFetch_EndToEnd(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleRecordSnapshot(ctx, callRequest("workflow_record_snapshot",
		map[string]any{"snapshot": pageSnapshot}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "retained for the next session")

	res, err = s.handleRecordStart(ctx, callRequest("workflow_record_start",
		map[string]any{"name": "checkout", "description": "Buy the cart contents"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	res, err = s.handleRecordAction(ctx, callRequest("workflow_record_action",
		map[string]any{"tool": "navigate", "url": "https://shop.test/cart"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "step 1")

	res, err = s.handleRecordAction(ctx, callRequest("workflow_record_action",
		map[string]any{"tool": "click", "element": "Checkout button", "ref": "e7"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "step 2")

	res, err = s.handleRecordStop(ctx, callRequest("workflow_record_stop", nil))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), `Saved workflow "checkout" with 2 steps`)

	res, err = s.handleWorkflowFetch(ctx, callRequest("workflow_fetch",
		map[string]any{"workflowName": "checkout"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	m := regexp.MustCompile("(?s)```json\n(.*?)\n```").FindStringSubmatch(resultText(t, res))
	require.NotNil(t, m, "fetch result has no fenced json block")
	var wf model.Workflow
	require.NoError(t, json.Unmarshal([]byte(m[1]), &wf))
	require.Len(t, wf.Steps, 2)
	assert.Equal(t, model.ToolClick, wf.Steps[1].Tool)
	require.NotNil(t, wf.Steps[1].Target)
	assert.Equal(t, "Checkout", wf.Steps[1].Target.Name)

	res, err = s.handleWorkflowList(ctx, callRequest("workflow_list", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "checkout")
	assert.Contains(t, resultText(t, res), "stepCount: 2")
}

func TestHandleRecordAction_Idle(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleRecordAction(context.Background(), callRequest("workflow_record_action",
		map[string]any{"tool": "navigate", "url": "https://x.test"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "No active recording")
}

func TestHandleRecordAction_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleRecordAction(ctx, callRequest("workflow_record_action",
		map[string]any{"tool": "drag"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), `unknown action "drag"`)

	res, err = s.handleRecordAction(ctx, callRequest("workflow_record_action",
		map[string]any{"tool": "navigate"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "url is required")

	// A ref that no snapshot resolves fails the call and records nothing.
	_, err = s.handleRecordStart(ctx, callRequest("workflow_record_start", map[string]any{"name": "wf"}))
	require.NoError(t, err)
	res, err = s.handleRecordAction(ctx, callRequest("workflow_record_action",
		map[string]any{"tool": "click", "ref": "e404"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleRecordStop_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleRecordStop(ctx, callRequest("workflow_record_stop", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	_, err = s.handleRecordStart(ctx, callRequest("workflow_record_start", map[string]any{"name": "wf"}))
	require.NoError(t, err)
	res, err = s.handleRecordStop(ctx, callRequest("workflow_record_stop", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError, "stopping with zero steps must fail")

	// The session survives the failed stop and can still accept steps.
	res, err = s.handleRecordAction(ctx, callRequest("workflow_record_action",
		map[string]any{"tool": "navigate", "url": "https://x.test"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	res, err = s.handleRecordStop(ctx, callRequest("workflow_record_stop", nil))
	require.NoError(t, err)
	assert.False(t, res.IsError, resultText(t, res))
}

func TestHandleWorkflowFetch_NotFound(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleWorkflowFetch(context.Background(), callRequest("workflow_fetch",
		map[string]any{"workflowName": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), `workflow "nope" not found`)
}

func TestHandleWorkflowList_Empty(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleWorkflowList(context.Background(), callRequest("workflow_list", nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "No workflows recorded yet.", resultText(t, res))
}

func TestHandleGetCredentials(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleGetCredentials(ctx, callRequest("get_login_credentials",
		map[string]any{"site": "shop.example"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "email: buyer@example.com")
	assert.Contains(t, text, "password: hunter2")

	res, err = s.handleGetCredentials(ctx, callRequest("get_login_credentials",
		map[string]any{"site": "unknown.example"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "known sites: shop.example")
}

func TestHandleLogin(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleLogin(context.Background(), callRequest("login_to_site",
		map[string]any{"site": "shop.example"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "# Login: shop.example")
	assert.Contains(t, text, "1. Navigate to https://shop.example/login")
}
