package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/creds"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/model"
)

// RenderWorkflow produces the markdown representation of a workflow returned
// by the workflow_fetch tool. Replay clients regex-extract the fenced json
// block, so the block must contain the complete document verbatim.
func RenderWorkflow(wf *model.Workflow) (string, error) {
	doc, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal workflow %q: %w", wf.Name, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Workflow: %s\n\n", wf.Name)
	if wf.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", wf.Description)
	}
	fmt.Fprintf(&b, "%d steps. Execute each step in order against the browser tool, resolving targets by role, accessible name, and ordinal.\n\n", len(wf.Steps))
	fmt.Fprintf(&b, "```json\n%s\n```\n", doc)
	return b.String(), nil
}

// RenderLoginInstructions formats a stored login as replay-ready
// instructions for the login_to_site tool. Nothing is validated here; the
// agent drives the browser tool with these steps.
func RenderLoginInstructions(site string, login creds.Login) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Login: %s\n\n", site)
	n := 1
	if login.LoginURL != "" {
		fmt.Fprintf(&b, "%d. Navigate to %s\n", n, login.LoginURL)
		n++
	}
	fmt.Fprintf(&b, "%d. Type %q into the username or email field\n", n, login.Identity())
	n++
	fmt.Fprintf(&b, "%d. Type the password into the password field and submit\n", n)
	fmt.Fprintf(&b, "\nPassword: %s\n", login.Password)
	if login.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", login.Notes)
	}
	return b.String()
}
