package agent

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed prompts/*.md
var defaultPrompts embed.FS

// PromptManager serves the system prompts for the three model call types.
// A prompt file in Directory overrides the embedded default of the same name.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

func (pm *PromptManager) load(name string) (string, error) {
	if pm.Directory != "" {
		path := filepath.Join(pm.Directory, name)
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		}
	}
	data, err := defaultPrompts.ReadFile("prompts/" + name)
	if err != nil {
		return "", fmt.Errorf("no prompt available for %s: %w", name, err)
	}
	return string(data), nil
}

func (pm *PromptManager) GetPlannerPrompt() (string, error) {
	return pm.load("planner.md")
}

func (pm *PromptManager) GetExecutorPrompt() (string, error) {
	return pm.load("executor.md")
}

func (pm *PromptManager) GetReplannerPrompt() (string, error) {
	return pm.load("replanner.md")
}
