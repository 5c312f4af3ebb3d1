package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/model"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/output"
)

// Handlers convert every component failure into a structured error result;
// nothing crosses the tool boundary as an unhandled fault.

func (s *Server) handleWorkflowFetch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	name := stringParam(params, "workflowName", "")
	if name == "" {
		return mcp.NewToolResultError("workflowName is required"), nil
	}

	wf, err := s.store.Fetch(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := output.RenderWorkflow(wf)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleWorkflowList(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := s.store.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(summaries) == 0 {
		return mcp.NewToolResultText("No workflows recorded yet."), nil
	}

	b, err := yaml.Marshal(summaries)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleRecordStart(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	name := stringParam(params, "name", "")
	description := stringParam(params, "description", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	if err := s.rec.Start(name, description); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Recording %q. Mirror each browser action via workflow_record_action and each snapshot via workflow_record_snapshot, then call workflow_record_stop.", name)), nil
}

func (s *Server) handleRecordStop(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	wf, err := s.rec.Stop()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	location, err := s.store.Save(wf)
	if err != nil {
		// Keep the drained steps available for one retry of
		// workflow_record_stop instead of silently losing the recording.
		if restoreErr := s.rec.Restore(wf); restoreErr != nil {
			s.log.Error("could not restore session after failed save",
				zap.String("workflow", wf.Name), zap.Error(restoreErr))
			return mcp.NewToolResultError(fmt.Sprintf(
				"saving workflow %q failed and the recording could not be kept: %v", wf.Name, err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf(
			"saving workflow %q failed: %v; the recording is still active — fix the storage problem and call workflow_record_stop again", wf.Name, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Saved workflow %q with %d steps to %s", wf.Name, len(wf.Steps), location)), nil
}

func (s *Server) handleRecordAction(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	action := stringParam(params, "tool", "")
	element := stringParam(params, "element", "")
	ref := stringParam(params, "ref", "")

	var err error
	switch action {
	case model.ToolNavigate:
		url := stringParam(params, "url", "")
		if url == "" {
			return mcp.NewToolResultError("url is required for navigate"), nil
		}
		err = s.rec.RecordNavigate(url)
	case model.ToolClick:
		err = s.rec.RecordClick(element, ref)
	case model.ToolType:
		err = s.rec.RecordType(element, ref, stringParam(params, "text", ""), boolParam(params, "submit", false))
	case model.ToolSelectOption:
		err = s.rec.RecordSelectOption(element, ref, stringSliceParam(params, "values"))
	default:
		return mcp.NewToolResultError(fmt.Sprintf(
			"unknown action %q (use navigate, click, type, or select_option)", action)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name, steps, active := s.rec.Recording()
	if !active {
		return mcp.NewToolResultText("No active recording; action ignored."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Recorded %s as step %d of %q", action, steps, name)), nil
}

func (s *Server) handleRecordSnapshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	text := stringParam(params, "snapshot", "")
	if text == "" {
		return mcp.NewToolResultError("snapshot is required"), nil
	}

	if err := s.rec.RecordSnapshot(text); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name, steps, active := s.rec.Recording()
	if !active {
		return mcp.NewToolResultText("No active recording; snapshot retained for the next session."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Snapshot indexed for %q (%d steps so far)", name, steps)), nil
}

func (s *Server) handleGetCredentials(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	site := stringParam(params, "site", "")
	if site == "" {
		return mcp.NewToolResultError("site is required"), nil
	}

	login, err := s.creds.Lookup(site)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := yaml.Marshal(login)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleLogin(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	site := stringParam(params, "site", "")
	if site == "" {
		return mcp.NewToolResultError("site is required"), nil
	}

	login, err := s.creds.Lookup(site)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(output.RenderLoginInstructions(site, login)), nil
}
