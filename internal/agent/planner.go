package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"planloop/internal/observability"

	"github.com/tmc/langchaingo/llms"
)

// Planner turns the original input into an ordered list of step descriptions
// with a single structured model call. There is no retry: a response that
// does not carry a parseable plan is a StructuredOutputError.
type Planner struct {
	Model       llms.Model
	Prompts     *PromptManager
	Logger      *observability.Logger
	Temperature float64
}

func NewPlanner(model llms.Model, prompts *PromptManager, logger *observability.Logger, temperature float64) *Planner {
	return &Planner{
		Model:       model,
		Prompts:     prompts,
		Logger:      logger,
		Temperature: temperature,
	}
}

// createPlanTool is the function schema the planner is forced through so its
// answer is machine-readable.
var createPlanTool = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "create_plan",
			Description: "Submit the ordered list of steps that will satisfy the objective.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"steps": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Atomic steps in execution order",
					},
				},
				"required": []string{"steps"},
			},
		},
	},
}

func (p *Planner) Plan(ctx context.Context, runID, input string) ([]string, error) {
	systemPrompt, err := p.Prompts.GetPlannerPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to load planner prompt: %w", err)
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart("Objective: " + input)},
		},
	}

	resp, err := p.Model.GenerateContent(ctx, messages,
		llms.WithTools(createPlanTool),
		llms.WithTemperature(p.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("planning call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, &StructuredOutputError{Stage: "plan", Err: fmt.Errorf("empty model response")}
	}

	choice := resp.Choices[0]
	p.Logger.LogLLM(runID, "plan: "+input, choice.Content, choice.ToolCalls)

	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall.Name != "create_plan" {
			continue
		}
		var args struct {
			Steps []string `json:"steps"`
		}
		if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
			return nil, &StructuredOutputError{Stage: "plan", Raw: tc.FunctionCall.Arguments, Err: err}
		}
		return args.Steps, nil
	}

	return nil, &StructuredOutputError{Stage: "plan", Raw: choice.Content, Err: fmt.Errorf("model did not call create_plan")}
}
