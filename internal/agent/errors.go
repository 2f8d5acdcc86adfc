package agent

import (
	"errors"
	"fmt"
)

// ErrNoResponse indicates the plan emptied without the replanner ever
// producing a final response.
var ErrNoResponse = errors.New("plan exhausted without a final response")

// StructuredOutputError reports a model response that could not be parsed
// into the expected structure. It is fatal for the run; no retry.
type StructuredOutputError struct {
	Stage string // which call produced it: "plan" or "replan"
	Raw   string // the raw model output, for diagnosis
	Err   error
}

func (e *StructuredOutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: structured output did not match schema: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: structured output did not match schema", e.Stage)
}

func (e *StructuredOutputError) Unwrap() error {
	return e.Err
}

// RecursionLimitError reports that a run hit its execute/replan cycle
// ceiling. The history completed so far is attached.
type RecursionLimitError struct {
	Limit   int
	History []StepRecord
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("recursion limit of %d execute/replan cycles exceeded (%d steps completed)", e.Limit, len(e.History))
}
