package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"planloop/internal/observability"

	"github.com/tmc/langchaingo/llms"
)

// DecisionKind discriminates the two variants of a replanning decision.
type DecisionKind string

const (
	DecisionRespond DecisionKind = "respond"
	DecisionRevise  DecisionKind = "revise"
)

// Decision is the replanner's verdict: either a final response for the user
// or a revised plan. Exactly one variant is populated, selected by Kind.
type Decision struct {
	Kind     DecisionKind
	Response string   // set when Kind == DecisionRespond
	Steps    []string // set when Kind == DecisionRevise
}

func Respond(text string) Decision {
	return Decision{Kind: DecisionRespond, Response: text}
}

func Revise(steps []string) Decision {
	return Decision{Kind: DecisionRevise, Steps: steps}
}

// Replanner inspects the accumulated history after each step and decides
// whether the objective is satisfied. Like the planner it gets exactly one
// attempt; unparseable output is fatal for the run.
type Replanner struct {
	Model       llms.Model
	Prompts     *PromptManager
	Logger      *observability.Logger
	Temperature float64
}

func NewReplanner(model llms.Model, prompts *PromptManager, logger *observability.Logger, temperature float64) *Replanner {
	return &Replanner{
		Model:       model,
		Prompts:     prompts,
		Logger:      logger,
		Temperature: temperature,
	}
}

var decisionTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "respond",
			Description: "Deliver the final answer to the user. Call this only when the objective is satisfied.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"response": map[string]any{
						"type":        "string",
						"description": "The final answer for the user",
					},
				},
				"required": []string{"response"},
			},
		},
	},
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "revise_plan",
			Description: "Replace the remaining plan with an updated ordered list of steps.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"steps": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Remaining steps in execution order",
					},
				},
				"required": []string{"steps"},
			},
		},
	},
}

func (r *Replanner) Replan(ctx context.Context, state *TaskState) (Decision, error) {
	systemPrompt, err := r.Prompts.GetReplannerPrompt()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load replanner prompt: %w", err)
	}

	remaining := "(none)"
	if len(state.Plan) > 0 {
		remaining = "- " + strings.Join(state.Plan, "\n- ")
	}
	review := fmt.Sprintf(
		"Objective: %s\n\nRemaining plan steps:\n%s\n\nCompleted steps with observations:\n%s\n\nIf the objective is satisfied, call respond with the final answer. Otherwise call revise_plan with only the steps that still need to be done.",
		state.Input, remaining, state.HistoryJSON(),
	)

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(review)},
		},
	}

	resp, err := r.Model.GenerateContent(ctx, messages,
		llms.WithTools(decisionTools),
		llms.WithTemperature(r.Temperature),
	)
	if err != nil {
		return Decision{}, fmt.Errorf("replanning call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Decision{}, &StructuredOutputError{Stage: "replan", Err: fmt.Errorf("empty model response")}
	}

	choice := resp.Choices[0]
	r.Logger.LogLLM(state.RunID, review, choice.Content, choice.ToolCalls)

	for _, tc := range choice.ToolCalls {
		switch tc.FunctionCall.Name {
		case "respond":
			var args struct {
				Response string `json:"response"`
			}
			if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
				return Decision{}, &StructuredOutputError{Stage: "replan", Raw: tc.FunctionCall.Arguments, Err: err}
			}
			return Respond(args.Response), nil
		case "revise_plan":
			var args struct {
				Steps []string `json:"steps"`
			}
			if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
				return Decision{}, &StructuredOutputError{Stage: "replan", Raw: tc.FunctionCall.Arguments, Err: err}
			}
			return Revise(args.Steps), nil
		}
	}

	// Some models answer in prose once the work is done; take that as the
	// final response rather than failing the run.
	if choice.Content != "" {
		return Respond(choice.Content), nil
	}

	return Decision{}, &StructuredOutputError{Stage: "replan", Raw: choice.Content, Err: fmt.Errorf("model produced neither a decision call nor text")}
}
