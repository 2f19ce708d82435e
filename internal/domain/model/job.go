package model

// JobState is the scheduler lifecycle state of a job.
type JobState string

const (
	JobPending   JobState = "PENDING"
	JobRunning   JobState = "RUNNING"
	JobCompleted JobState = "COMPLETED"
	JobFailed    JobState = "FAILED"
	JobCancelled JobState = "CANCELLED"
	JobTimeout   JobState = "TIMEOUT"
)

// Terminal reports whether the job can no longer change state.
func (s JobState) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled, JobTimeout:
		return true
	default:
		return false
	}
}

// JobStatus carries the scheduler's view of a job's current state.
type JobStatus struct {
	State       JobState `json:"state"`
	StateReason string   `json:"stateReason,omitempty"`
	ExitCode    int      `json:"exitCode"`
}

// JobTime groups scheduler timing fields, in seconds.
type JobTime struct {
	Elapsed int64 `json:"elapsed"`
	Limit   int64 `json:"limit"`
	Start   int64 `json:"start"`
}

// Job is a read-only snapshot of one scheduler job. All mutations (submit,
// cancel) are remote calls; the client's cached view is invalidated by a
// full reload.
type Job struct {
	ID               int       `json:"jobId"`
	Name             string    `json:"name"`
	User             string    `json:"user"`
	Account          string    `json:"account"`
	Partition        string    `json:"partition"`
	Nodes            string    `json:"nodes"`
	Status           JobStatus `json:"status"`
	Time             JobTime   `json:"time"`
	WorkingDirectory string    `json:"workingDirectory,omitempty"`
}

// JobMetadata is the submitted script plus output locations for one job.
type JobMetadata struct {
	JobID          int    `json:"jobId"`
	Script         string `json:"script"`
	StandardInput  string `json:"standardInput,omitempty"`
	StandardOutput string `json:"standardOutput,omitempty"`
	StandardError  string `json:"standardError,omitempty"`
}
