package firecrest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"

	"github.com/cscs/firecrest-ui-api/internal/domain/model"
)

// FilesystemAPI wraps the backend synchronous filesystem operation endpoints.
type FilesystemAPI struct {
	client *Client
}

// NewFilesystemAPI creates a FilesystemAPI over the given client.
func NewFilesystemAPI(client *Client) *FilesystemAPI {
	return &FilesystemAPI{client: client}
}

// ListParams selects a directory listing.
type ListParams struct {
	System     string
	Path       string
	ShowHidden bool
	PageSize   int
	PageNumber int
}

// ListFiles lists a remote directory.
func (a *FilesystemAPI) ListFiles(ctx context.Context, token string, p ListParams) ([]model.File, error) {
	query := url.Values{}
	query.Set("path", p.Path)
	query.Set("showHidden", strconv.FormatBool(p.ShowHidden))
	if p.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(p.PageSize))
		query.Set("pageNumber", strconv.Itoa(p.PageNumber))
	}

	var envelope struct {
		Output []model.File `json:"output"`
	}
	err := a.client.Get(ctx, Call{
		Path:   "/filesystem/" + p.System + "/ops/ls",
		Target: APIRemote,
		Token:  token,
		Query:  query,
	}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p.Path, err)
	}
	return envelope.Output, nil
}

// Tail returns the last lines of a remote file.
func (a *FilesystemAPI) Tail(ctx context.Context, token, system, path string, lines int) (string, error) {
	query := url.Values{}
	query.Set("path", path)
	if lines > 0 {
		query.Set("lines", strconv.Itoa(lines))
	}

	var envelope struct {
		Output struct {
			Content string `json:"content"`
		} `json:"output"`
	}
	err := a.client.Get(ctx, Call{
		Path:   "/filesystem/" + system + "/ops/tail",
		Target: APIRemote,
		Token:  token,
		Query:  query,
	}, &envelope)
	if err != nil {
		return "", fmt.Errorf("tail %s: %w", path, err)
	}
	return envelope.Output.Content, nil
}

// Checksum computes a remote file's checksum.
func (a *FilesystemAPI) Checksum(ctx context.Context, token, system, path string) (*model.Checksum, error) {
	query := url.Values{}
	query.Set("path", path)

	var envelope struct {
		Output model.Checksum `json:"output"`
	}
	err := a.client.Get(ctx, Call{
		Path:   "/filesystem/" + system + "/ops/checksum",
		Target: APIRemote,
		Token:  token,
		Query:  query,
	}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("checksum %s: %w", path, err)
	}
	return &envelope.Output, nil
}

// Download fetches a remote file's content through the synchronous endpoint.
// Callers enforce the configured size limit before issuing the call.
func (a *FilesystemAPI) Download(ctx context.Context, token, system, path string) ([]byte, error) {
	query := url.Values{}
	query.Set("path", path)

	blob, err := a.client.DoBlob(ctx, Call{
		Method: "GET",
		Path:   "/filesystem/" + system + "/ops/download",
		Target: APIRemote,
		Token:  token,
		Query:  query,
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	return blob, nil
}

// SymlinkParams groups the inputs for a symlink creation.
type SymlinkParams struct {
	System string
	// Path is the symlink target; LinkPath is where the link is created.
	Path     string
	LinkPath string
}

// CreateSymlink creates a symbolic link.
func (a *FilesystemAPI) CreateSymlink(ctx context.Context, token string, p SymlinkParams) error {
	body, err := JSONBody(map[string]string{"path": p.Path, "linkPath": p.LinkPath})
	if err != nil {
		return err
	}
	err = a.client.Post(ctx, Call{
		Path:   "/filesystem/" + p.System + "/ops/symlink",
		Target: APIRemote,
		Token:  token,
		Body:   body,
	}, nil)
	if err != nil {
		return fmt.Errorf("symlink %s: %w", p.LinkPath, err)
	}
	return nil
}

// MakeDirectory creates a remote directory.
func (a *FilesystemAPI) MakeDirectory(ctx context.Context, token, system, path string) error {
	body, err := JSONBody(map[string]string{"path": path})
	if err != nil {
		return err
	}
	err = a.client.Post(ctx, Call{
		Path:   "/filesystem/" + system + "/ops/mkdir",
		Target: APIRemote,
		Token:  token,
		Body:   body,
	}, nil)
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// UploadParams groups the inputs for a synchronous (small file) upload.
type UploadParams struct {
	System   string
	Path     string // destination directory
	FileName string
	Content  io.Reader
}

// UploadFile sends a small file as a multipart form to the synchronous
// upload endpoint. Large files go through TransferAPI.Upload instead.
func (a *FilesystemAPI) UploadFile(ctx context.Context, token string, p UploadParams) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", p.FileName)
	if err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(fw, p.Content); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	if err := mw.WriteField("path", p.Path); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}

	err = a.client.Post(ctx, Call{
		Path:   "/filesystem/" + p.System + "/ops/upload",
		Target: APIRemote,
		Token:  token,
		Body:   &Body{ContentType: mw.FormDataContentType(), Reader: &buf},
	}, nil)
	if err != nil {
		return fmt.Errorf("upload %s: %w", p.FileName, err)
	}
	return nil
}

// ChownParams groups the inputs for an ownership change.
type ChownParams struct {
	System string
	Path   string
	Owner  string
	Group  string
}

// Chown changes a remote file's owner and group.
func (a *FilesystemAPI) Chown(ctx context.Context, token string, p ChownParams) error {
	body, err := JSONBody(map[string]string{"path": p.Path, "owner": p.Owner, "group": p.Group})
	if err != nil {
		return err
	}
	err = a.client.Put(ctx, Call{
		Path:   "/filesystem/" + p.System + "/ops/chown",
		Target: APIRemote,
		Token:  token,
		Body:   body,
	}, nil)
	if err != nil {
		return fmt.Errorf("chown %s: %w", p.Path, err)
	}
	return nil
}

// Chmod changes a remote file's permission bits (octal string mode).
func (a *FilesystemAPI) Chmod(ctx context.Context, token, system, path, mode string) error {
	body, err := JSONBody(map[string]string{"path": path, "mode": mode})
	if err != nil {
		return err
	}
	err = a.client.Put(ctx, Call{
		Path:   "/filesystem/" + system + "/ops/chmod",
		Target: APIRemote,
		Token:  token,
		Body:   body,
	}, nil)
	if err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

// Remove deletes a remote file or directory.
func (a *FilesystemAPI) Remove(ctx context.Context, token, system, path string) error {
	query := url.Values{}
	query.Set("path", path)
	err := a.client.Delete(ctx, Call{
		Path:   "/filesystem/" + system + "/ops/rm",
		Target: APIRemote,
		Token:  token,
		Query:  query,
	}, nil)
	if err != nil {
		return fmt.Errorf("rm %s: %w", path, err)
	}
	return nil
}
