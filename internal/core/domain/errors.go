package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is an error thrown when no active upload session matches
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionAlreadyObserved is an error thrown when a session registers twice with the lifecycle guard
var ErrSessionAlreadyObserved = errors.New("session already observed")

// ErrEmptyFile is an error thrown when the source file has no bytes to send
var ErrEmptyFile = errors.New("empty file")

// ErrInvalidChunkSize is an error thrown when the chunk size is not positive
var ErrInvalidChunkSize = errors.New("invalid chunk size")

// ErrTooManyParts is an error thrown when the file needs more parts than the backend accepts
var ErrTooManyParts = errors.New("too many parts")

// ErrInitiateFailed is an error thrown when the backend could not open an upload
var ErrInitiateFailed = errors.New("upload initiation failed")

// ErrPartFailed is an error thrown when a part could not be transferred
var ErrPartFailed = errors.New("part upload failed")

// ErrPartRejected is an error thrown when the backend answered but refused a part
var ErrPartRejected = errors.New("part rejected")

// ErrFinalizeFailed is an error thrown when the parts could not be assembled
var ErrFinalizeFailed = errors.New("upload finalization failed")

// ErrUploadCancelled is returned when an upload ends because cancellation was requested
var ErrUploadCancelled = errors.New("upload cancelled")

// ErrOutOfOrderPart is an error thrown when an appended part does not follow the previous one
var ErrOutOfOrderPart = errors.New("out of order part")

// ErrInvalidFileName is an error thrown when a file name is empty or escapes its directory
var ErrInvalidFileName = errors.New("invalid file name")

// ErrInvalidPayload is an error thrown when a chunk payload cannot be decoded
var ErrInvalidPayload = errors.New("invalid payload")

// ErrSourceNotFound is an error thrown when the file to upload does not exist or is not a regular file
var ErrSourceNotFound = errors.New("source file not found")

// ErrRecordNotFound is an error thrown when an upload record is not found
var ErrRecordNotFound = errors.New("upload record not found")

// UploadStage names the step of an upload that failed
type UploadStage string

const (
	StageInitiate UploadStage = "initiate"
	StageTransfer UploadStage = "transfer"
	StageFinalize UploadStage = "finalize"
)

// UploadError is a terminal upload failure. PartIndex is the part being sent
// for transfer failures, the last acknowledged part for finalize failures and
// zero when nothing was initiated.
type UploadError struct {
	Stage     UploadStage
	PartIndex int
	Err       error
}

func (e *UploadError) Error() string {
	if e.Stage == StageTransfer {
		return fmt.Sprintf("%s: part %d: %v", e.stageErr(), e.PartIndex, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.stageErr(), e.Err)
}

// Unwrap exposes both the stage sentinel and the backend error
func (e *UploadError) Unwrap() []error {
	return []error{e.stageErr(), e.Err}
}

func (e *UploadError) stageErr() error {
	switch e.Stage {
	case StageInitiate:
		return ErrInitiateFailed
	case StageFinalize:
		return ErrFinalizeFailed
	default:
		return ErrPartFailed
	}
}
