package domain

import (
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadState represents the state of an upload session
type UploadState string

const (
	StateInit         UploadState = "init"
	StateTransferring UploadState = "transferring"
	StateFinalizing   UploadState = "finalizing"
	StateComplete     UploadState = "complete"
	StateAborting     UploadState = "aborting"
	StateCancelled    UploadState = "cancelled"
	StateFailed       UploadState = "failed"
)

// Terminal reports whether no further backend call may follow this state
func (s UploadState) Terminal() bool {
	switch s {
	case StateComplete, StateCancelled, StateFailed:
		return true
	default:
		return false
	}
}

// LocalSessionID is the handle returned by backends that need no registration
const LocalSessionID = "local"

// SourceFile is the read-only data of an upload
type SourceFile struct {
	Name   string
	Size   int64
	Reader io.ReaderAt
}

// ObjectTarget is where an upload lands: a destination directory and a
// collision resistant name derived from the source file name
type ObjectTarget struct {
	Dir  string
	Name string
}

// NewObjectTarget prefixes the base name of fileName with a short random identifier
func NewObjectTarget(dir, fileName string) ObjectTarget {
	id := uuid.New().String()
	return ObjectTarget{
		Dir:  dir,
		Name: id[len(id)-6:] + "_" + filepath.Base(fileName),
	}
}

// Location is the destination path of the object
func (t ObjectTarget) Location() string {
	return path.Join("/", t.Dir, t.Name)
}

// Key is the object-store key of the object
func (t ObjectTarget) Key() string {
	return strings.TrimPrefix(t.Location(), "/")
}

// PartAck is the backend proof that a part was received
type PartAck struct {
	PartIndex int
	Token     string
}

// UploadResult is the outcome of an upload session
type UploadResult struct {
	ID        uuid.UUID
	State     UploadState
	Target    ObjectTarget
	Location  string
	Parts     int
	BytesSent int64
}

// IncompleteUpload is a multipart upload still open on an object store
type IncompleteUpload struct {
	Key       string
	UploadID  string
	Initiated time.Time
}

// UploadRecord is the journaled view of an upload, used for status reporting
type UploadRecord struct {
	ID        uuid.UUID
	FileName  string
	ObjectKey string
	Backend   string
	State     UploadState
	SizeBytes int64
	BytesSent int64
	Parts     int
	Location  string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Percent is the share of the file already acknowledged
func (r UploadRecord) Percent() int {
	return Percent(r.BytesSent, r.SizeBytes)
}
