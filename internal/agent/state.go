package agent

import "encoding/json"

// Phase is the orchestrator's position in the plan/execute/replan machine.
type Phase string

const (
	PhasePlanning   Phase = "planning"
	PhaseExecuting  Phase = "executing"
	PhaseReplanning Phase = "replanning"
	PhaseTerminal   Phase = "terminal"
)

// StepRecord pairs an executed step with the observation it produced.
// Records are immutable once appended.
type StepRecord struct {
	Step        string `json:"step"`
	Observation string `json:"observation"`
}

// TaskState is the single mutable record threaded through a run. The
// orchestrator owns it exclusively; other components get read access plus
// append access to the transcript.
type TaskState struct {
	RunID   string
	Input   string
	Phase   Phase
	Plan    []string
	History []StepRecord

	Response  string
	Responded bool
}

func NewTaskState(runID, input string) *TaskState {
	return &TaskState{
		RunID:   runID,
		Input:   input,
		Phase:   PhasePlanning,
		Plan:    make([]string, 0),
		History: make([]StepRecord, 0),
	}
}

// PopStep removes and returns the first step of the current plan.
func (s *TaskState) PopStep() (string, bool) {
	if len(s.Plan) == 0 {
		return "", false
	}
	step := s.Plan[0]
	s.Plan = s.Plan[1:]
	return step, true
}

// AppendRecord adds a completed (step, observation) pair to the history.
func (s *TaskState) AppendRecord(step, observation string) {
	s.History = append(s.History, StepRecord{Step: step, Observation: observation})
}

// SetResponse sets the final response. It is set at most once; later calls
// are ignored so the first terminal decision wins.
func (s *TaskState) SetResponse(text string) {
	if s.Responded {
		return
	}
	s.Response = text
	s.Responded = true
}

// HistoryJSON renders the completed steps for the replanner's prompt.
func (s *TaskState) HistoryJSON() string {
	data, err := json.Marshal(s.History)
	if err != nil {
		return "[]"
	}
	return string(data)
}
