package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const contentMarker = " content: "

// CommandTool executes a small scripted grammar for project scaffolding:
//
//	mkdir <path>
//	touch <path>
//	write file <path> content: <content>
//
// Paths are applied literally, relative to the process working directory.
// Unrecognized commands come back as a plain result string so the model can
// correct itself; only filesystem failures on a recognized command are errors.
type CommandTool struct{}

func NewCommandTool() *CommandTool {
	return &CommandTool{}
}

func (c *CommandTool) Name() string {
	return "command"
}

func (c *CommandTool) Description() string {
	return "Execute a scaffolding command. Supported forms: 'mkdir <path>', 'touch <path>', 'write file <path> content: <content>'."
}

func (c *CommandTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The scaffolding command to execute, e.g. 'mkdir src' or 'write file src/main.py content: print(1)'",
			},
		},
		"required": []string{"command"},
	}
}

func (c *CommandTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}
	return c.Run(args.Command)
}

// Run interprets one command string. The returned string is meant to be read
// by the model, not parsed.
func (c *CommandTool) Run(command string) (string, error) {
	command = strings.TrimSpace(command)

	switch {
	case strings.HasPrefix(command, "mkdir "):
		return c.mkdir(strings.TrimSpace(strings.TrimPrefix(command, "mkdir ")))
	case strings.HasPrefix(command, "touch "):
		return c.touch(strings.TrimSpace(strings.TrimPrefix(command, "touch ")))
	case strings.HasPrefix(command, "write file "):
		return c.writeFile(strings.TrimPrefix(command, "write file "))
	default:
		return fmt.Sprintf("Unknown command: %q. Supported commands: 'mkdir <path>', 'touch <path>', 'write file <path> content: <content>'", command), nil
	}
}

func (c *CommandTool) mkdir(path string) (string, error) {
	if path == "" {
		return "Error: mkdir requires a path", nil
	}
	// MkdirAll succeeds silently when the directory already exists.
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return fmt.Sprintf("Directory %s created", path), nil
}

func (c *CommandTool) touch(path string) (string, error) {
	if path == "" {
		return "Error: touch requires a path", nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create parent directory for %s: %w", path, err)
		}
	}
	// O_CREATE without O_TRUNC: existing content is never overwritten.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", path, err)
	}
	f.Close()
	return fmt.Sprintf("File %s created", path), nil
}

func (c *CommandTool) writeFile(rest string) (string, error) {
	idx := strings.Index(rest, contentMarker)
	if idx < 0 {
		return "Error: write file requires the form 'write file <path> content: <content>'", nil
	}
	path := strings.TrimSpace(rest[:idx])
	content := rest[idx+len(contentMarker):]
	if path == "" {
		return "Error: write file requires a path", nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create parent directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(content), path), nil
}
