package firecrest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"time"

	"github.com/cscs/firecrest-ui-api/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// ErrJobsTimeout is raised when a job-list fetch loses the race against its
// deadline. The underlying call keeps running; only its result is discarded.
var ErrJobsTimeout = errors.New("job listing timed out")

// ComputeAPI wraps the backend compute/scheduler endpoints.
type ComputeAPI struct {
	client *Client
	// jobsTimeout bounds each per-system job-list fetch.
	jobsTimeout time.Duration
}

// ComputeAPIOptions groups constructor dependencies for ComputeAPI.
type ComputeAPIOptions struct {
	Client      *Client
	JobsTimeout time.Duration // Optional, defaults to 30s
}

// NewComputeAPI creates a ComputeAPI over the given client.
func NewComputeAPI(opts ComputeAPIOptions) *ComputeAPI {
	timeout := opts.JobsTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ComputeAPI{client: opts.Client, jobsTimeout: timeout}
}

// JobsQuery selects which jobs to list on one system.
type JobsQuery struct {
	System   string
	Account  string
	AllUsers bool
}

// JobsError is the swallowed failure attached to a JobsResult.
type JobsError struct {
	Message string `json:"message"`
}

// JobsResult is the outcome of listing jobs on one system. A failed fetch
// yields an empty job list plus a populated Error instead of an error
// return, so one system being down does not block others from rendering.
type JobsResult struct {
	System   string      `json:"system"`
	Jobs     []model.Job `json:"jobs"`
	Account  string      `json:"account"`
	AllUsers bool        `json:"allUsers"`
	Error    *JobsError  `json:"error,omitempty"`
}

type jobsEnvelope struct {
	Jobs []model.Job `json:"jobs"`
}

// GetJobs lists jobs on one system. It never returns an error: upstream
// failures and timeouts are folded into the result's Error field.
func (a *ComputeAPI) GetJobs(ctx context.Context, token string, q JobsQuery) JobsResult {
	result := JobsResult{
		System:   q.System,
		Jobs:     []model.Job{},
		Account:  q.Account,
		AllUsers: q.AllUsers,
	}

	envelope, err := raceTimeout(a.jobsTimeout, func() (jobsEnvelope, error) {
		var env jobsEnvelope
		query := url.Values{}
		if q.Account != "" {
			query.Set("account", q.Account)
		}
		query.Set("allusers", strconv.FormatBool(q.AllUsers))
		callErr := a.client.Get(ctx, Call{
			Path:   "/compute/" + q.System + "/jobs",
			Target: APIRemote,
			Token:  token,
			Query:  query,
		}, &env)
		return env, callErr
	})
	if err != nil {
		result.Error = &JobsError{Message: "Unable to fetch jobs. Downstream status: " + downstreamReason(err)}
		return result
	}

	if envelope.Jobs != nil {
		result.Jobs = envelope.Jobs
	}
	return result
}

// GetJobsAcrossSystems fans the job listing out over several systems
// concurrently. Failures stay isolated per system; the slice order matches
// the input order.
func (a *ComputeAPI) GetJobsAcrossSystems(ctx context.Context, token string, systems []string, q JobsQuery) []JobsResult {
	results := make([]JobsResult, len(systems))

	g, gctx := errgroup.WithContext(ctx)
	for i, system := range systems {
		g.Go(func() error {
			query := q
			query.System = system
			results[i] = a.GetJobs(gctx, token, query)
			return nil
		})
	}
	// Workers never return errors; failures live inside each JobsResult.
	_ = g.Wait()
	return results
}

// GetJob fetches one job by ID.
func (a *ComputeAPI) GetJob(ctx context.Context, token, system string, jobID int) (*model.Job, error) {
	var envelope jobsEnvelope
	err := a.client.Get(ctx, Call{
		Path:   fmt.Sprintf("/compute/%s/jobs/%d", system, jobID),
		Target: APIRemote,
		Token:  token,
	}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", jobID, err)
	}
	if len(envelope.Jobs) == 0 {
		return nil, &ErrorResponse{
			Message:    fmt.Sprintf("job %d not found on %s", jobID, system),
			StatusCode: 404,
			StatusText: ReasonPhrase(404),
		}
	}
	return &envelope.Jobs[0], nil
}

// GetJobMetadata fetches the submitted script and output locations for one job.
func (a *ComputeAPI) GetJobMetadata(ctx context.Context, token, system string, jobID int) (*model.JobMetadata, error) {
	var envelope struct {
		Jobs []model.JobMetadata `json:"jobs"`
	}
	err := a.client.Get(ctx, Call{
		Path:   fmt.Sprintf("/compute/%s/jobs/%d/metadata", system, jobID),
		Target: APIRemote,
		Token:  token,
	}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("get job metadata %d: %w", jobID, err)
	}
	if len(envelope.Jobs) == 0 {
		return nil, &ErrorResponse{
			Message:    fmt.Sprintf("metadata for job %d not found on %s", jobID, system),
			StatusCode: 404,
			StatusText: ReasonPhrase(404),
		}
	}
	return &envelope.Jobs[0], nil
}

// SubmitJobParams groups the inputs for a job submission.
type SubmitJobParams struct {
	System           string
	WorkingDirectory string
	Account          string
	// FileName is the batch script's name; Script is its content.
	FileName string
	Script   []byte
}

// SubmitJobResult is the scheduler's acknowledgement of a submission.
type SubmitJobResult struct {
	JobID int `json:"jobId"`
}

// SubmitJob submits a batch script as a multipart form.
func (a *ComputeAPI) SubmitJob(ctx context.Context, token string, p SubmitJobParams) (*SubmitJobResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", p.FileName)
	if err != nil {
		return nil, fmt.Errorf("build submit form: %w", err)
	}
	if _, err := fw.Write(p.Script); err != nil {
		return nil, fmt.Errorf("build submit form: %w", err)
	}
	if err := mw.WriteField("working_directory", p.WorkingDirectory); err != nil {
		return nil, fmt.Errorf("build submit form: %w", err)
	}
	if p.Account != "" {
		if err := mw.WriteField("account", p.Account); err != nil {
			return nil, fmt.Errorf("build submit form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build submit form: %w", err)
	}

	var result SubmitJobResult
	err = a.client.Post(ctx, Call{
		Path:   "/compute/" + p.System + "/jobs",
		Target: APIRemote,
		Token:  token,
		Body:   &Body{ContentType: mw.FormDataContentType(), Reader: &buf},
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("submit job: %w", err)
	}
	return &result, nil
}

// CancelJob cancels one job. The backend answers 204 on success.
func (a *ComputeAPI) CancelJob(ctx context.Context, token, system string, jobID int) error {
	err := a.client.Delete(ctx, Call{
		Path:   fmt.Sprintf("/compute/%s/jobs/%d", system, jobID),
		Target: APIRemote,
		Token:  token,
	}, nil)
	if err != nil {
		return fmt.Errorf("cancel job %d: %w", jobID, err)
	}
	return nil
}

// downstreamReason extracts the upstream reason phrase from an error, or
// falls back to the error text for network/timeout failures.
func downstreamReason(err error) string {
	var upstream *ErrorResponse
	if errors.As(err, &upstream) {
		return upstream.StatusText
	}
	if errors.Is(err, ErrJobsTimeout) {
		return "Request Timeout"
	}
	return err.Error()
}

// raceTimeout runs fn in its own goroutine and races it against d. When the
// timer wins, the fn result is discarded (the call itself is not aborted)
// and ErrJobsTimeout is returned.
func raceTimeout[T any](d time.Duration, fn func() (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn()
		done <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.value, out.err
	case <-timer.C:
		var zero T
		return zero, ErrJobsTimeout
	}
}
