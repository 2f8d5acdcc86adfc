package agent

import (
	"context"
	"fmt"

	"planloop/internal/observability"
	"planloop/internal/store"
	"planloop/internal/tools"

	"github.com/tmc/langchaingo/llms"
)

// Executor carries out a single plan step with a bounded reasoning loop:
// think, optionally invoke a tool, observe, repeat. Tool failures are folded
// back into the loop as observations rather than aborting the step; only
// model-call failures propagate.
type Executor struct {
	Model       llms.Model
	Registry    *tools.Registry
	Transcript  *store.TranscriptStore
	Prompts     *PromptManager
	Logger      *observability.Logger
	MaxSteps    int
	Temperature float64
}

func NewExecutor(model llms.Model, registry *tools.Registry, transcript *store.TranscriptStore, prompts *PromptManager, logger *observability.Logger, maxSteps int, temperature float64) *Executor {
	return &Executor{
		Model:       model,
		Registry:    registry,
		Transcript:  transcript,
		Prompts:     prompts,
		Logger:      logger,
		MaxSteps:    maxSteps,
		Temperature: temperature,
	}
}

func (e *Executor) Execute(ctx context.Context, step string, state *TaskState) (string, error) {
	systemPrompt, err := e.Prompts.GetExecutorPrompt()
	if err != nil {
		return "", fmt.Errorf("failed to load executor prompt: %w", err)
	}

	directive := fmt.Sprintf("STEP: %s\n\nCONTEXT: This step is part of a plan for the overall objective: %s", step, state.Input)
	if err := e.Transcript.AddTurn(state.RunID, "human", directive); err != nil {
		return "", fmt.Errorf("failed to record step directive: %w", err)
	}

	history, err := e.Transcript.Turns(state.RunID)
	if err != nil {
		return "", fmt.Errorf("failed to load transcript: %w", err)
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
	}
	messages = append(messages, history...)

	var llmTools []llms.Tool
	for _, name := range e.Registry.Names() {
		t := e.Registry.Get(name)
		llmTools = append(llmTools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	var observation string

	for i := 0; i < e.MaxSteps; i++ {
		resp, err := e.Model.GenerateContent(ctx, messages,
			llms.WithTools(llmTools),
			llms.WithTemperature(e.Temperature),
		)
		if err != nil {
			return "", fmt.Errorf("executor call: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("executor call: empty model response")
		}

		choice := resp.Choices[0]
		e.Logger.LogLLM(state.RunID, directive, choice.Content, choice.ToolCalls)
		if choice.Content != "" {
			e.Logger.LogReasoning(state.RunID, choice.Content)
		}

		var assistantParts []llms.ContentPart
		if choice.Content != "" {
			assistantParts = append(assistantParts, llms.TextContent{Text: choice.Content})
		}
		for _, tc := range choice.ToolCalls {
			assistantParts = append(assistantParts, tc)
		}
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeAI,
			Parts: assistantParts,
		})

		// No tool calls means the step is finished.
		if len(choice.ToolCalls) == 0 {
			observation = choice.Content
			break
		}

		for _, tc := range choice.ToolCalls {
			tool := e.Registry.Get(tc.FunctionCall.Name)
			var result string

			if tool == nil {
				result = fmt.Sprintf("Error: Tool %s not found", tc.FunctionCall.Name)
			} else {
				e.Logger.LogToolCall(state.RunID, tool.Name(), tc.FunctionCall.Arguments)
				res, err := tool.Execute(ctx, tc.FunctionCall.Arguments)
				if err != nil {
					res = fmt.Sprintf("Error: %v", err)
				}
				result = res
				e.Logger.LogToolResult(state.RunID, tool.Name(), result)
			}

			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: tc.ID,
						Name:       tc.FunctionCall.Name,
						Content:    result,
					},
				},
			})
		}
	}

	if observation == "" {
		observation = "The step was not completed within the reasoning budget."
	}

	if err := e.Transcript.AddTurn(state.RunID, "ai", observation); err != nil {
		return "", fmt.Errorf("failed to record observation: %w", err)
	}

	return observation, nil
}
