package httpx

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cscs/firecrest-ui-api/internal/firecrest"
	"github.com/cscs/firecrest-ui-api/internal/http/validation"
	"github.com/cscs/firecrest-ui-api/internal/observability/errtrack"
)

// ComputeHandlers provides HTTP handlers for scheduler job operations.
type ComputeHandlers struct {
	Svc      *firecrest.ComputeAPI
	Reporter errtrack.Reporter
}

// ListJobs handles GET /api/compute/{system}/jobs?account=&allusers=.
// Upstream failures land inside the result payload, never as an error
// status, so a down system still renders.
func (h *ComputeHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	result := h.Svc.GetJobs(r.Context(), AccessTokenFromContext(r.Context()), firecrest.JobsQuery{
		System:   r.PathValue("system"),
		Account:  r.URL.Query().Get("account"),
		AllUsers: r.URL.Query().Get("allusers") == "true",
	})
	WriteJSON(w, http.StatusOK, result)
}

// ListJobsAcrossSystems handles GET /api/compute/jobs?systems=a,b&account=.
// The fan-out isolates failures per system.
func (h *ComputeHandlers) ListJobsAcrossSystems(w http.ResponseWriter, r *http.Request) {
	systemsParam := r.URL.Query().Get("systems")
	if systemsParam == "" {
		WriteAPIError(w, r, &validation.Error{
			Message: "missing systems parameter",
			Fields: []validation.FieldError{{
				Location: "query",
				Name:     "systems",
				Message:  "at least one system is required",
			}},
		}, ErrorOpts{})
		return
	}

	var systems []string
	for _, s := range strings.Split(systemsParam, ",") {
		if s = strings.TrimSpace(s); s != "" {
			systems = append(systems, s)
		}
	}

	results := h.Svc.GetJobsAcrossSystems(r.Context(), AccessTokenFromContext(r.Context()), systems, firecrest.JobsQuery{
		Account:  r.URL.Query().Get("account"),
		AllUsers: r.URL.Query().Get("allusers") == "true",
	})
	WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}

// GetJob handles GET /api/compute/{system}/jobs/{jobId}.
func (h *ComputeHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobID(w, r)
	if !ok {
		return
	}

	job, err := h.Svc.GetJob(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("system"), jobID)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"job": job})
}

// GetJobMetadata handles GET /api/compute/{system}/jobs/{jobId}/metadata.
func (h *ComputeHandlers) GetJobMetadata(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobID(w, r)
	if !ok {
		return
	}

	metadata, err := h.Svc.GetJobMetadata(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("system"), jobID)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"metadata": metadata})
}

// SubmitJob handles POST /api/compute/{system}/jobs. The batch script
// arrives as a multipart "file" field and must be a .sh file of at most
// validation.MaxJobScriptSize bytes.
func (h *ComputeHandlers) SubmitJob(w http.ResponseWriter, r *http.Request) {
	// The form limit leaves headroom over the script limit so the size
	// check below fails with field detail instead of a parser error.
	if err := r.ParseMultipartForm(validation.MaxJobScriptSize * 2); err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteAPIError(w, r, validation.JobScript("", 0), ErrorOpts{})
		return
	}
	defer file.Close() //nolint:errcheck

	if vErr := validation.JobScript(header.Filename, header.Size); vErr != nil {
		WriteAPIError(w, r, vErr, ErrorOpts{})
		return
	}

	script, err := io.ReadAll(file)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}

	workingDirectory := r.FormValue("working_directory")
	if fieldErr := validation.Required("form", "working_directory", workingDirectory); fieldErr != nil {
		WriteAPIError(w, r, &validation.Error{
			Message: "invalid job submission",
			Fields:  []validation.FieldError{*fieldErr},
		}, ErrorOpts{})
		return
	}

	result, err := h.Svc.SubmitJob(r.Context(), AccessTokenFromContext(r.Context()), firecrest.SubmitJobParams{
		System:           r.PathValue("system"),
		WorkingDirectory: workingDirectory,
		Account:          r.FormValue("account"),
		FileName:         header.Filename,
		Script:           script,
	})
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}

// CancelJob handles DELETE /api/compute/{system}/jobs/{jobId}.
func (h *ComputeHandlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobID(w, r)
	if !ok {
		return
	}

	err := h.Svc.CancelJob(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("system"), jobID)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ComputeHandlers) jobID(w http.ResponseWriter, r *http.Request) (int, bool) {
	jobID, err := strconv.Atoi(r.PathValue("jobId"))
	if err != nil {
		WriteAPIError(w, r, &validation.Error{
			Message: "invalid job ID",
			Fields: []validation.FieldError{{
				Location: "path",
				Name:     "jobId",
				Value:    r.PathValue("jobId"),
				Message:  "job ID must be an integer",
			}},
		}, ErrorOpts{})
		return 0, false
	}
	if jobID < 0 {
		WriteAPIError(w, r, errors.New("negative job ID"), ErrorOpts{})
		return 0, false
	}
	return jobID, true
}
