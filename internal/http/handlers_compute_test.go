package httpx

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cscs/firecrest-ui-api/internal/firecrest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComputeFixture(t *testing.T, backend http.HandlerFunc) (*ComputeHandlers, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	api := firecrest.NewComputeAPI(firecrest.ComputeAPIOptions{
		Client:      firecrest.NewClient(firecrest.ClientOptions{BaseURL: srv.URL}),
		JobsTimeout: time.Second,
	})
	return &ComputeHandlers{Svc: api}, srv
}

func withPathValue(r *http.Request, pairs ...string) *http.Request {
	r = r.WithContext(SetAccessTokenInContext(r.Context(), "tok"))
	for i := 0; i < len(pairs); i += 2 {
		r.SetPathValue(pairs[i], pairs[i+1])
	}
	return r
}

func multipartBody(t *testing.T, fileName string, script []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(script)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestListJobsAlways200(t *testing.T) {
	h, _ := newComputeFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	w := httptest.NewRecorder()
	r := withPathValue(httptest.NewRequest(http.MethodGet, "/api/compute/daint/jobs", nil), "system", "daint")
	h.ListJobs(w, r)

	assert.Equal(t, http.StatusOK, w.Code, "a down scheduler still answers 200")

	var result firecrest.JobsResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.Error)
	assert.Contains(t, result.Error.Message, "Unable to fetch jobs")
}

func TestListJobsAcrossSystemsValidation(t *testing.T) {
	h, _ := newComputeFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobs":[]}`))
	})

	w := httptest.NewRecorder()
	r := withPathValue(httptest.NewRequest(http.MethodGet, "/api/compute/jobs", nil))
	h.ListJobsAcrossSystems(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "systems")
}

func TestListJobsAcrossSystemsFanOut(t *testing.T) {
	h, _ := newComputeFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"jobs":[{"jobId":1}]}`))
	})

	w := httptest.NewRecorder()
	r := withPathValue(httptest.NewRequest(http.MethodGet, "/api/compute/jobs?systems=alpha,broken", nil))
	h.ListJobsAcrossSystems(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Results []firecrest.JobsResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Results, 2)
	assert.Nil(t, payload.Results[0].Error)
	assert.NotNil(t, payload.Results[1].Error)
}

func TestSubmitJobValidation(t *testing.T) {
	h, _ := newComputeFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"jobId":99}`))
	})

	t.Run("rejects non-sh script", func(t *testing.T) {
		body, contentType := multipartBody(t, "job.py", []byte("print()"), map[string]string{
			"working_directory": "/scratch",
		})
		r := withPathValue(httptest.NewRequest(http.MethodPost, "/api/compute/daint/jobs", body), "system", "daint")
		r.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		h.SubmitJob(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var envelope errorEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Equal(t, "validation", envelope.Type)
		require.NotEmpty(t, envelope.Fields)
		assert.Equal(t, "file", envelope.Fields[0].Name, "the failing field is named file")
	})

	t.Run("rejects missing file", func(t *testing.T) {
		body, contentType := multipartBody(t, "", nil, map[string]string{
			"working_directory": "/scratch",
		})
		r := withPathValue(httptest.NewRequest(http.MethodPost, "/api/compute/daint/jobs", body), "system", "daint")
		r.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		h.SubmitJob(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects missing working directory", func(t *testing.T) {
		body, contentType := multipartBody(t, "job.sh", []byte("#!/bin/bash\n"), nil)
		r := withPathValue(httptest.NewRequest(http.MethodPost, "/api/compute/daint/jobs", body), "system", "daint")
		r.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		h.SubmitJob(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "working_directory")
	})

	t.Run("valid submission forwards to the backend", func(t *testing.T) {
		body, contentType := multipartBody(t, "job.sh", []byte("#!/bin/bash\nsrun hostname\n"), map[string]string{
			"working_directory": "/scratch",
			"account":           "csstaff",
		})
		r := withPathValue(httptest.NewRequest(http.MethodPost, "/api/compute/daint/jobs", body), "system", "daint")
		r.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		h.SubmitJob(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "99")
	})
}

func TestJobIDValidation(t *testing.T) {
	h, _ := newComputeFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobs":[{"jobId":7}]}`))
	})

	w := httptest.NewRecorder()
	r := withPathValue(httptest.NewRequest(http.MethodGet, "/api/compute/daint/jobs/abc", nil),
		"system", "daint", "jobId", "abc")
	h.GetJob(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "jobId")
}
