package agent

import (
	"context"
	"errors"
	"testing"

	"planloop/internal/observability"

	"github.com/tmc/langchaingo/llms"
)

func newTestPlanner(model *fakeModel) *Planner {
	return NewPlanner(model, NewPromptManager(""), observability.NewLogger(), 0)
}

func TestPlanner_ParsesPlan(t *testing.T) {
	chtemp(t)
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResp("create_plan", `{"steps":["mkdir out","touch out/readme.md"]}`),
	}}
	p := newTestPlanner(model)

	steps, err := p.Plan(context.Background(), "run-1", "scaffold a project")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(steps) != 2 || steps[0] != "mkdir out" {
		t.Errorf("unexpected plan: %v", steps)
	}
}

func TestPlanner_MalformedArguments(t *testing.T) {
	chtemp(t)
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResp("create_plan", `{"steps": not json`),
	}}
	p := newTestPlanner(model)

	_, err := p.Plan(context.Background(), "run-1", "scaffold a project")
	var soErr *StructuredOutputError
	if !errors.As(err, &soErr) {
		t.Fatalf("expected StructuredOutputError, got %v", err)
	}
	if soErr.Stage != "plan" {
		t.Errorf("expected stage plan, got %q", soErr.Stage)
	}
}

func TestPlanner_ProseInsteadOfPlan(t *testing.T) {
	chtemp(t)
	model := &fakeModel{responses: []*llms.ContentResponse{
		textResp("Sure! First I would create a directory..."),
	}}
	p := newTestPlanner(model)

	_, err := p.Plan(context.Background(), "run-1", "scaffold a project")
	var soErr *StructuredOutputError
	if !errors.As(err, &soErr) {
		t.Fatalf("expected StructuredOutputError, got %v", err)
	}
}
