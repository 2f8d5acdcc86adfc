package agent

import (
	"context"
	"os"
	"strings"
	"testing"

	"planloop/internal/observability"
	"planloop/internal/store"
	"planloop/internal/tools"

	"github.com/tmc/langchaingo/llms"
)

func newTestExecutor(t *testing.T, model *fakeModel, maxSteps int) (*Executor, *store.TranscriptStore) {
	t.Helper()
	transcript, err := store.NewTranscriptStore()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { transcript.Close() })

	registry := tools.NewRegistry()
	registry.Register(tools.NewCommandTool())

	return NewExecutor(model, registry, transcript, NewPromptManager(""), observability.NewLogger(), maxSteps, 0), transcript
}

func TestExecutor_RunsToolAndObserves(t *testing.T) {
	chtemp(t)
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResp("command", `{"command":"mkdir out"}`),
		textResp("Created the out directory."),
	}}
	e, transcript := newTestExecutor(t, model, 10)

	state := NewTaskState("run-1", "create a directory called out")
	obs, err := e.Execute(context.Background(), "mkdir out", state)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if obs != "Created the out directory." {
		t.Errorf("unexpected observation: %q", obs)
	}

	info, err := os.Stat("out")
	if err != nil || !info.IsDir() {
		t.Errorf("tool side effect missing: %v", err)
	}

	// Step directive and final observation both land in the transcript.
	n, err := transcript.Len("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 transcript turns, got %d", n)
	}
}

func TestExecutor_ToolFailureBecomesObservation(t *testing.T) {
	chtemp(t)
	// First the model calls a tool that does not exist, then it recovers.
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResp("rocket_ship", `{"destination":"mars"}`),
		textResp("That tool was unavailable, finished without it."),
	}}
	e, _ := newTestExecutor(t, model, 10)

	state := NewTaskState("run-1", "do something")
	obs, err := e.Execute(context.Background(), "use a rocket", state)
	if err != nil {
		t.Fatalf("tool failure must not abort the step: %v", err)
	}
	if !strings.Contains(obs, "finished") {
		t.Errorf("unexpected observation: %q", obs)
	}
	if model.calls != 2 {
		t.Errorf("expected the error to be fed back for another model turn, got %d calls", model.calls)
	}
}

func TestExecutor_BudgetExhausted(t *testing.T) {
	chtemp(t)
	// The model keeps calling tools and never produces a final answer.
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResp("command", `{"command":"mkdir loop"}`),
	}}
	e, _ := newTestExecutor(t, model, 3)

	state := NewTaskState("run-1", "loop forever")
	obs, err := e.Execute(context.Background(), "keep going", state)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(obs, "not completed") {
		t.Errorf("expected budget-exhausted observation, got %q", obs)
	}
	if model.calls != 3 {
		t.Errorf("expected exactly 3 model calls, got %d", model.calls)
	}
}
