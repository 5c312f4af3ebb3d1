package snapshot

import (
	"fmt"
	"regexp"
	"strings"
)

// Node is one element of an accessibility-tree snapshot as reported by the
// browser-control tool. Ref is the ephemeral reference id, valid only until
// the next snapshot. Text is the node's immediate text content.
type Node struct {
	Role     string
	Name     string
	Ref      string
	Text     string
	Children []Node
}

// nodeLineRe matches a snapshot line body after the "- " marker:
// a role, an optional quoted accessible name, and trailing attributes.
// Example: button "Checkout" [ref=e47] [cursor=pointer]
var nodeLineRe = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9_-]*)(?:\s+"((?:[^"\\]|\\.)*)")?\s*(.*?):?$`)

// refAttrRe extracts the ephemeral reference id from the attribute tail.
var refAttrRe = regexp.MustCompile(`\[ref=([^\]]+)\]`)

// Parse reads the indented text snapshot format produced by Playwright-style
// browser MCP tools:
//
//	- banner:
//	  - link "Home" [ref=e3]
//	- main:
//	  - heading "Products" [level=2]
//	  - text: 24 results
//	  - button "Checkout" [ref=e47] [cursor=pointer]
//
// Two-space indentation encodes nesting. "text:" lines become the parent
// node's immediate text content. Property lines (starting with "/") and
// unrecognized attributes are ignored. Returns an error only when no nodes
// at all could be parsed.
func Parse(text string) (*Node, error) {
	root := &Node{Role: "root"}
	// stack[i] is the node currently open at depth i; stack[0] is the root.
	stack := []*Node{root}
	parsed := 0

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, "- ") {
			continue
		}
		indent := len(line) - len(trimmed)
		depth := indent/2 + 1
		if depth > len(stack) {
			depth = len(stack)
		}
		body := strings.TrimSpace(trimmed[2:])

		// Property lines like "- /url: /cart" belong to the node above.
		if strings.HasPrefix(body, "/") {
			continue
		}

		parent := stack[depth-1]

		// Immediate text content attaches to the parent node.
		if content, ok := strings.CutPrefix(body, "text:"); ok {
			content = strings.TrimSpace(content)
			if content != "" {
				if parent.Text != "" {
					parent.Text += " "
				}
				parent.Text += content
			}
			parsed++
			continue
		}

		m := nodeLineRe.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		node := Node{
			Role: m[1],
			Name: strings.ReplaceAll(m[2], `\"`, `"`),
		}
		if ref := refAttrRe.FindStringSubmatch(m[3]); ref != nil {
			node.Ref = ref[1]
		}

		parent.Children = append(parent.Children, node)
		stack = append(stack[:depth], &parent.Children[len(parent.Children)-1])
		parsed++
	}

	if parsed == 0 {
		return nil, fmt.Errorf("no accessibility nodes found in snapshot text")
	}
	return root, nil
}
