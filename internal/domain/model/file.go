package model

// FileType classifies a filesystem listing entry.
type FileType string

const (
	FileTypeFile      FileType = "file"
	FileTypeSymlink   FileType = "symlink"
	FileTypeDirectory FileType = "directory"
)

// File is a read-only filesystem listing entry. Never persisted locally.
type File struct {
	Name         string   `json:"name"`
	Type         FileType `json:"type"`
	User         string   `json:"user"`
	Group        string   `json:"group"`
	Permissions  string   `json:"permissions"`
	Size         int64    `json:"size"`
	LastModified string   `json:"lastModified"`
	LinkTarget   string   `json:"linkTarget,omitempty"`
}

// IsDirectory reports whether the entry can be descended into.
func (f File) IsDirectory() bool { return f.Type == FileTypeDirectory }

// Checksum is the result of a remote checksum operation.
type Checksum struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"checksum"`
}

// TransferJob is an asynchronous backend-managed operation (copy, move,
// upload, download) that completes independently of the HTTP request that
// started it.
type TransferJob struct {
	TransferID int64  `json:"transferId"`
	System     string `json:"system"`
	LogFile    string `json:"logFile,omitempty"`
}
