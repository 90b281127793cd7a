package transport

import (
	"context"
	"sync"
)

// Recorder is an in-memory Submitter that keeps every accepted submission. It is used by
// offline dry runs and by tests.
type Recorder struct {
	mu          sync.Mutex
	submissions []Submission
	// FailAt makes the n-th call (1-based) return Err; zero never fails.
	FailAt int
	Err    error
	calls  int
}

var _ Submitter = (*Recorder)(nil)

// Submit records a copy of the submission.
func (r *Recorder) Submit(_ context.Context, submission Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.FailAt > 0 && r.calls == r.FailAt {
		return r.Err
	}

	submission.Prompt = submission.Prompt.Clone()
	submission.PartialExecutionTargets = append([]string(nil), submission.PartialExecutionTargets...)
	r.submissions = append(r.submissions, submission)
	return nil
}

// Submissions returns the accepted submissions in arrival order.
func (r *Recorder) Submissions() []Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Submission(nil), r.submissions...)
}

// Calls reports how many submissions were attempted, including failed ones.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
