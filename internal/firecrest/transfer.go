package firecrest

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/cscs/firecrest-ui-api/internal/domain/model"
)

//go:embed upload_script.tmpl
var uploadScriptTemplate string

// TransferAPI wraps the backend asynchronous transfer endpoints. Transfer
// jobs complete independently of the HTTP request that started them.
type TransferAPI struct {
	client *Client
}

// NewTransferAPI creates a TransferAPI over the given client.
func NewTransferAPI(client *Client) *TransferAPI {
	return &TransferAPI{client: client}
}

// CopyMoveParams groups the inputs for a copy or move transfer.
type CopyMoveParams struct {
	System     string
	SourcePath string
	TargetPath string
}

type transferEnvelope struct {
	TransferJob model.TransferJob `json:"transferJob"`
}

// Copy starts an asynchronous remote copy.
func (a *TransferAPI) Copy(ctx context.Context, token string, p CopyMoveParams) (*model.TransferJob, error) {
	return a.startTransfer(ctx, token, p, "cp")
}

// Move starts an asynchronous remote move.
func (a *TransferAPI) Move(ctx context.Context, token string, p CopyMoveParams) (*model.TransferJob, error) {
	return a.startTransfer(ctx, token, p, "mv")
}

func (a *TransferAPI) startTransfer(ctx context.Context, token string, p CopyMoveParams, op string) (*model.TransferJob, error) {
	body, err := JSONBody(map[string]string{
		"sourcePath": p.SourcePath,
		"targetPath": p.TargetPath,
	})
	if err != nil {
		return nil, err
	}

	var envelope transferEnvelope
	err = a.client.Post(ctx, Call{
		Path:   "/filesystem/" + p.System + "/transfer/" + op,
		Target: APIRemote,
		Token:  token,
		Body:   body,
	}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, p.SourcePath, err)
	}
	return &envelope.TransferJob, nil
}

// DownloadResult describes an asynchronous staged download.
type DownloadResult struct {
	TransferJob model.TransferJob `json:"transferJob"`
	DownloadURL string            `json:"downloadUrl"`
}

// Download stages a large file for direct download and returns the transfer
// job plus the pre-signed URL.
func (a *TransferAPI) Download(ctx context.Context, token, system, sourcePath string) (*DownloadResult, error) {
	body, err := JSONBody(map[string]string{"sourcePath": sourcePath})
	if err != nil {
		return nil, err
	}

	var result DownloadResult
	err = a.client.Post(ctx, Call{
		Path:   "/filesystem/" + system + "/transfer/download",
		Target: APIRemote,
		Token:  token,
		Body:   body,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("transfer download %s: %w", sourcePath, err)
	}
	return &result, nil
}

// UploadTransferParams groups the inputs for a large (multipart) upload.
type UploadTransferParams struct {
	System   string
	Path     string // destination directory
	FileName string
	FileSize int64
	Account  string
}

// UploadResult describes a staged multipart upload: pre-signed part URLs for
// direct-to-storage upload plus a generated shell script the user runs
// locally to push the parts.
type UploadResult struct {
	TransferJob       model.TransferJob `json:"transferJob"`
	PartsUploadURLs   []string          `json:"partsUploadUrls"`
	CompleteUploadURL string            `json:"completeUploadUrl"`
	MaxPartSize       int64             `json:"maxPartSize"`
	// Script is generated locally from the embedded template; it is not
	// part of the backend payload.
	Script string `json:"script,omitempty"`
}

// Upload requests pre-signed multipart URLs for a large upload and renders
// the helper script.
func (a *TransferAPI) Upload(ctx context.Context, token string, p UploadTransferParams) (*UploadResult, error) {
	payload := map[string]any{
		"path":     p.Path,
		"fileName": p.FileName,
		"fileSize": p.FileSize,
	}
	if p.Account != "" {
		payload["account"] = p.Account
	}
	body, err := JSONBody(payload)
	if err != nil {
		return nil, err
	}

	var result UploadResult
	err = a.client.Post(ctx, Call{
		Path:   "/filesystem/" + p.System + "/transfer/upload",
		Target: APIRemote,
		Token:  token,
		Body:   body,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("transfer upload %s: %w", p.FileName, err)
	}

	script, err := RenderTemplate(uploadScriptTemplate, map[string]string{
		"file_name":           p.FileName,
		"file_size":           strconv.FormatInt(p.FileSize, 10),
		"max_part_size":       strconv.FormatInt(result.MaxPartSize, 10),
		"parts_upload_urls":   strings.Join(result.PartsUploadURLs, "\n"),
		"complete_upload_url": result.CompleteUploadURL,
	})
	if err != nil {
		return nil, fmt.Errorf("render upload script: %w", err)
	}
	result.Script = script

	return &result, nil
}
