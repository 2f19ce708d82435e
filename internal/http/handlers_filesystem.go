package httpx

import (
	"context"
	"net/http"
	"path"
	"strconv"

	"github.com/cscs/firecrest-ui-api/internal/domain/model"
	"github.com/cscs/firecrest-ui-api/internal/firecrest"
	"github.com/cscs/firecrest-ui-api/internal/http/validation"
	"github.com/cscs/firecrest-ui-api/internal/observability/errtrack"
	"github.com/cscs/firecrest-ui-api/internal/util"
)

// FilesystemHandlers provides HTTP handlers for filesystem operations and
// transfers.
type FilesystemHandlers struct {
	Ops      *firecrest.FilesystemAPI
	Transfer *firecrest.TransferAPI
	Reporter errtrack.Reporter

	// ListPaginateLimit is the page size for directory listings.
	ListPaginateLimit int
	// UploadLimit and DownloadLimit bound the synchronous paths, in bytes.
	UploadLimit   int64
	DownloadLimit int64
}

// requirePath extracts the mandatory path query parameter.
func (h *FilesystemHandlers) requirePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := r.URL.Query().Get("path")
	if p == "" {
		WriteAPIError(w, r, &validation.Error{
			Message: "missing path parameter",
			Fields: []validation.FieldError{{
				Location: "query",
				Name:     "path",
				Message:  "a remote path is required",
			}},
		}, ErrorOpts{})
		return "", false
	}
	return p, true
}

// ListFiles handles GET /api/filesystems/{system}/ops/ls.
func (h *FilesystemHandlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	remotePath, ok := h.requirePath(w, r)
	if !ok {
		return
	}

	pageNumber, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))
	files, err := h.Ops.ListFiles(r.Context(), AccessTokenFromContext(r.Context()), firecrest.ListParams{
		System:     r.PathValue("system"),
		Path:       remotePath,
		ShowHidden: r.URL.Query().Get("showHidden") == "true",
		PageSize:   h.ListPaginateLimit,
		PageNumber: pageNumber,
	})
	if err != nil {
		// A listing failure renders as an inline banner, not an error
		// page: client errors up to 404 are swallowed into the envelope.
		WriteAPIError(w, r, err, ErrorOpts{Threshold: http.StatusNotFound, Reporter: h.Reporter})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"files": files})
}

// Tail handles GET /api/filesystems/{system}/ops/tail.
func (h *FilesystemHandlers) Tail(w http.ResponseWriter, r *http.Request) {
	remotePath, ok := h.requirePath(w, r)
	if !ok {
		return
	}

	lines, _ := strconv.Atoi(r.URL.Query().Get("lines"))
	content, err := h.Ops.Tail(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("system"), remotePath, lines)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"content": content})
}

// Checksum handles GET /api/filesystems/{system}/ops/checksum.
func (h *FilesystemHandlers) Checksum(w http.ResponseWriter, r *http.Request) {
	remotePath, ok := h.requirePath(w, r)
	if !ok {
		return
	}

	checksum, err := h.Ops.Checksum(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("system"), remotePath)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"checksum": checksum})
}

// DownloadPassthrough handles GET /fs/filesystems/{system}/ops/download.
// It streams the remote file's bytes to the browser with a download
// disposition.
func (h *FilesystemHandlers) DownloadPassthrough(w http.ResponseWriter, r *http.Request) {
	remotePath, ok := h.requirePath(w, r)
	if !ok {
		return
	}

	blob, err := h.Ops.Download(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("system"), remotePath)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	if int64(len(blob)) > h.DownloadLimit {
		WriteAPIError(w, r, &validation.Error{
			Message: "file exceeds the " + util.PrettyBytes(h.DownloadLimit) + " synchronous download limit; use a transfer instead",
			Fields: []validation.FieldError{{
				Location: "query",
				Name:     "path",
				Value:    remotePath,
				Message:  "file is larger than the configured limit",
			}},
		}, ErrorOpts{})
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(remotePath)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	_, _ = w.Write(blob)
}

type symlinkRequest struct {
	Path     string `json:"path"`
	LinkPath string `json:"linkPath"`
}

// CreateSymlink handles POST /api/filesystems/{system}/ops/symlink.
func (h *FilesystemHandlers) CreateSymlink(w http.ResponseWriter, r *http.Request) {
	var req symlinkRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	err := h.Ops.CreateSymlink(r.Context(), AccessTokenFromContext(r.Context()), firecrest.SymlinkParams{
		System:   r.PathValue("system"),
		Path:     req.Path,
		LinkPath: req.LinkPath,
	})
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type mkdirRequest struct {
	Path string `json:"path"`
}

// MakeDirectory handles POST /api/filesystems/{system}/ops/mkdir.
func (h *FilesystemHandlers) MakeDirectory(w http.ResponseWriter, r *http.Request) {
	var req mkdirRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	err := h.Ops.MakeDirectory(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("system"), req.Path)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// UploadFile handles POST /api/filesystems/{system}/ops/upload. Small files
// only; the request body is capped at the configured upload limit and a
// breach surfaces as a validation envelope naming the limit.
func (h *FilesystemHandlers) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.UploadLimit)
	if err := r.ParseMultipartForm(h.UploadLimit); err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteAPIError(w, r, &validation.Error{
			Message: "missing file field",
			Fields: []validation.FieldError{{
				Location: "form",
				Name:     "file",
				Message:  "a file is required",
			}},
		}, ErrorOpts{})
		return
	}
	defer file.Close() //nolint:errcheck

	err = h.Ops.UploadFile(r.Context(), AccessTokenFromContext(r.Context()), firecrest.UploadParams{
		System:   r.PathValue("system"),
		Path:     r.FormValue("path"),
		FileName: header.Filename,
		Content:  file,
	})
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type chownRequest struct {
	Path  string `json:"path"`
	Owner string `json:"owner"`
	Group string `json:"group"`
}

// Chown handles PUT /api/filesystems/{system}/ops/chown.
func (h *FilesystemHandlers) Chown(w http.ResponseWriter, r *http.Request) {
	var req chownRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	err := h.Ops.Chown(r.Context(), AccessTokenFromContext(r.Context()), firecrest.ChownParams{
		System: r.PathValue("system"),
		Path:   req.Path,
		Owner:  req.Owner,
		Group:  req.Group,
	})
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type chmodRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
}

// Chmod handles PUT /api/filesystems/{system}/ops/chmod.
func (h *FilesystemHandlers) Chmod(w http.ResponseWriter, r *http.Request) {
	var req chmodRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	err := h.Ops.Chmod(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("system"), req.Path, req.Mode)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /api/filesystems/{system}/ops/rm.
func (h *FilesystemHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	remotePath, ok := h.requirePath(w, r)
	if !ok {
		return
	}

	err := h.Ops.Remove(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("system"), remotePath)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type copyMoveRequest struct {
	SourcePath string `json:"sourcePath"`
	TargetPath string `json:"targetPath"`
}

// Copy handles POST /api/filesystems/{system}/transfer/cp.
func (h *FilesystemHandlers) Copy(w http.ResponseWriter, r *http.Request) {
	h.copyOrMove(w, r, h.Transfer.Copy)
}

// Move handles POST /api/filesystems/{system}/transfer/mv.
func (h *FilesystemHandlers) Move(w http.ResponseWriter, r *http.Request) {
	h.copyOrMove(w, r, h.Transfer.Move)
}

func (h *FilesystemHandlers) copyOrMove(
	w http.ResponseWriter,
	r *http.Request,
	start func(ctx context.Context, token string, p firecrest.CopyMoveParams) (*model.TransferJob, error),
) {
	var req copyMoveRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.SourcePath == "" || req.TargetPath == "" {
		WriteAPIError(w, r, &validation.Error{
			Message: "missing transfer paths",
			Fields: []validation.FieldError{
				{Location: "body", Name: "sourcePath", Value: req.SourcePath, Message: "a source path is required"},
				{Location: "body", Name: "targetPath", Value: req.TargetPath, Message: "a target path is required"},
			},
		}, ErrorOpts{})
		return
	}

	job, err := start(r.Context(), AccessTokenFromContext(r.Context()), firecrest.CopyMoveParams{
		System:     r.PathValue("system"),
		SourcePath: req.SourcePath,
		TargetPath: req.TargetPath,
	})
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"transferJob": job})
}

type transferDownloadRequest struct {
	SourcePath string `json:"sourcePath"`
}

// TransferDownload handles POST /api/filesystems/{system}/transfer/download.
func (h *FilesystemHandlers) TransferDownload(w http.ResponseWriter, r *http.Request) {
	var req transferDownloadRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Transfer.Download(r.Context(), AccessTokenFromContext(r.Context()), r.PathValue("system"), req.SourcePath)
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}

type transferUploadRequest struct {
	Path     string `json:"path"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	Account  string `json:"account"`
}

// TransferUpload handles POST /api/filesystems/{system}/transfer/upload:
// the large-file path returning pre-signed part URLs and the helper script.
func (h *FilesystemHandlers) TransferUpload(w http.ResponseWriter, r *http.Request) {
	var req transferUploadRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Transfer.Upload(r.Context(), AccessTokenFromContext(r.Context()), firecrest.UploadTransferParams{
		System:   r.PathValue("system"),
		Path:     req.Path,
		FileName: req.FileName,
		FileSize: req.FileSize,
		Account:  req.Account,
	})
	if err != nil {
		WriteAPIError(w, r, err, ErrorOpts{Reporter: h.Reporter})
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}
