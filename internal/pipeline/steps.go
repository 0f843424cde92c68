package pipeline

import "github.com/google/uuid"

// Step names one stage of a run.
type Step string

// Run steps, in execution order.
const (
	StepCrawl     Step = "crawl"
	StepFilter    Step = "filter"
	StepFeed      Step = "feed"
	StepTag       Step = "tag"
	StepCorrelate Step = "correlate"
	StepSummarize Step = "summarize"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    Step   `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// emitProgress calls the progress callback if configured
func (r *Runner) emitProgress(runID uuid.UUID, step Step, message string, content any) {
	if r.onProgress != nil {
		r.onProgress(ProgressEvent{
			Step:    step,
			Message: message,
			RunID:   runID.String(),
			Content: content,
		})
	}
}
