package agent

import (
	"context"
	"fmt"

	"planloop/internal/observability"

	"github.com/google/uuid"
)

// Orchestrator owns the task state and drives the run:
//
//	Planning -> Executing -> Replanning -> (Executing | Terminal)
//
// The routing decision is re-evaluated after every replanning step. The only
// non-terminal exit is the cycle ceiling, which aborts the run with a
// RecursionLimitError carrying the partial history.
type Orchestrator struct {
	Planner   *Planner
	Executor  *Executor
	Replanner *Replanner
	Logger    *observability.Logger
	MaxCycles int
}

func NewOrchestrator(planner *Planner, executor *Executor, replanner *Replanner, logger *observability.Logger, maxCycles int) *Orchestrator {
	if maxCycles <= 0 {
		maxCycles = 50
	}
	return &Orchestrator{
		Planner:   planner,
		Executor:  executor,
		Replanner: replanner,
		Logger:    logger,
		MaxCycles: maxCycles,
	}
}

// Run executes one task to completion. The returned state always carries the
// history accumulated so far, also on fatal errors.
func (o *Orchestrator) Run(ctx context.Context, input string) (*TaskState, error) {
	runID := uuid.NewString()
	state := NewTaskState(runID, input)

	steps, err := o.Planner.Plan(ctx, runID, input)
	if err != nil {
		state.Phase = PhaseTerminal
		return state, err
	}
	state.Plan = steps
	o.Logger.LogPlan(runID, steps)

	if len(state.Plan) == 0 {
		state.Phase = PhaseTerminal
		return state, ErrNoResponse
	}

	for cycle := 0; ; cycle++ {
		if err := ctx.Err(); err != nil {
			state.Phase = PhaseTerminal
			return state, err
		}
		if cycle >= o.MaxCycles {
			state.Phase = PhaseTerminal
			return state, &RecursionLimitError{Limit: o.MaxCycles, History: state.History}
		}

		state.Phase = PhaseExecuting
		step, ok := state.PopStep()
		if !ok {
			state.Phase = PhaseTerminal
			return state, ErrNoResponse
		}

		observation, err := o.Executor.Execute(ctx, step, state)
		if err != nil {
			state.Phase = PhaseTerminal
			return state, err
		}
		state.AppendRecord(step, observation)
		o.Logger.LogStep(runID, step, observation)

		state.Phase = PhaseReplanning
		decision, err := o.Replanner.Replan(ctx, state)
		if err != nil {
			state.Phase = PhaseTerminal
			return state, err
		}

		switch decision.Kind {
		case DecisionRespond:
			state.SetResponse(decision.Response)
			state.Phase = PhaseTerminal
			o.Logger.LogTerminal(runID, state.Response)
			return state, nil
		case DecisionRevise:
			state.Plan = decision.Steps
			o.Logger.LogReplan(runID, string(DecisionRevise), decision.Steps)
			if len(state.Plan) == 0 {
				state.Phase = PhaseTerminal
				return state, ErrNoResponse
			}
		default:
			state.Phase = PhaseTerminal
			return state, fmt.Errorf("unknown decision kind: %q", decision.Kind)
		}
	}
}
