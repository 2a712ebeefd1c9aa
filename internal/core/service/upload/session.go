package upload

import (
	"context"
	"fmt"
	"io"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/port"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// session is the mutable state of one upload. Everything but cancelRequested
// and the fields under mu is owned by the goroutine running the upload.
type session struct {
	id        uuid.UUID
	req       port.UploadRequest
	target    domain.ObjectTarget
	chunkSize int64
	buf       []byte

	state     domain.UploadState
	offset    int64
	partIndex int
	acks      []domain.PartAck

	cancelRequested atomic.Bool

	mu        sync.Mutex
	sessionID string
	abortOnce sync.Once

	// inFlight is set while a part or the completion is with the backend.
	// aborted and completed are exclusive, whichever is claimed first wins.
	inFlight   bool
	aborted    bool
	abortRaced bool
	completed  bool

	failure  *domain.UploadError
	location string
}

func newSession(id uuid.UUID, req port.UploadRequest, chunkSize int64) *session {
	bufSize := chunkSize
	if req.File.Size < bufSize {
		bufSize = req.File.Size
	}
	target := domain.NewObjectTarget(req.Destination, req.File.Name)
	if req.Target != nil {
		target = *req.Target
	}
	return &session{
		id:        id,
		req:       req,
		target:    target,
		chunkSize: chunkSize,
		buf:       make([]byte, bufSize),
		state:     domain.StateInit,
		partIndex: 1,
	}
}

func (s *session) setBackendSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = sessionID
}

func (s *session) backendSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *session) beginCall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = true
}

func (s *session) endCall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

// claimAbort marks the session aborted unless it already completed. It
// remembers whether a backend request was still running at that point.
func (s *session) claimAbort() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return "", false
	}
	s.aborted = true
	s.abortRaced = s.inFlight
	return s.sessionID, true
}

// claimCompletion marks the session completed unless an abort or a cancel
// got there first
func (s *session) claimCompletion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aborted || s.cancelRequested.Load() {
		return false
	}
	s.completed = true
	return true
}

// takeAbortRaced reports, once, that an abort ran while a request was in flight
func (s *session) takeAbortRaced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	raced := s.abortRaced
	s.abortRaced = false
	return raced
}

// readNextPart reads the chunk starting at the current offset
func (s *session) readNextPart() ([]byte, error) {
	start, end := domain.NextRange(s.offset, s.req.File.Size, s.chunkSize)
	chunk := s.buf[:end-start]
	if _, err := io.ReadFull(io.NewSectionReader(s.req.File.Reader, start, end-start), chunk); err != nil {
		return nil, fmt.Errorf("read part %d at offset %d: %w", s.partIndex, start, err)
	}
	return chunk, nil
}

func (s *session) fail(stage domain.UploadStage, partIndex int, err error) {
	s.failure = &domain.UploadError{Stage: stage, PartIndex: partIndex, Err: err}
}

func (s *session) notifyProgress(percent int) {
	if s.req.OnProgress != nil {
		s.req.OnProgress(percent, s.offset)
	}
}

func (s *session) notifyComplete() {
	if s.req.OnComplete != nil {
		s.req.OnComplete(s.location)
	}
}

func (s *session) notifyCancel() {
	if s.req.OnCancel != nil {
		s.req.OnCancel()
	}
}

func (s *session) notifyFailure() {
	if s.req.OnFailure != nil {
		s.req.OnFailure(s.failure.PartIndex, s.failure)
	}
}

func (s *session) result() *domain.UploadResult {
	return &domain.UploadResult{
		ID:        s.id,
		State:     s.state,
		Target:    s.target,
		Location:  s.location,
		Parts:     len(s.acks),
		BytesSent: s.offset,
	}
}

// run drives the state machine until a terminal state. Backend calls use a
// context that ignores caller cancellation so an in-flight request always
// finishes; cancellation is only honoured between parts.
func (u *uploadService) run(ctx context.Context, s *session) {
	callCtx := context.WithoutCancel(ctx)

	for !s.state.Terminal() {
		prev := s.state
		switch s.state {
		case domain.StateInit:
			s.state = u.initiate(callCtx, s)
		case domain.StateTransferring:
			s.state = u.transferPart(ctx, callCtx, s)
		case domain.StateFinalizing:
			s.state = u.finalize(ctx, callCtx, s)
		case domain.StateAborting:
			s.state = u.abortSession(s)
		}
		if prev != s.state {
			u.logger.Debug("upload state changed", "upload_id", s.id, "from", prev, "to", s.state)
		}
	}
}

func (u *uploadService) initiate(ctx context.Context, s *session) domain.UploadState {
	sessionID, err := u.backend.Initiate(ctx, s.target)
	if err != nil {
		s.fail(domain.StageInitiate, 0, err)
		u.guard.Unobserve(s.id)
		u.logger.Error("failed to initiate upload", "upload_id", s.id, "key", s.target.Key(), "error", err)
		s.notifyFailure()
		return domain.StateFailed
	}

	s.setBackendSession(sessionID)
	u.logger.Info("upload initiated", "upload_id", s.id, "backend", u.backend.Name(), "key", s.target.Key(), "size", s.req.File.Size)
	return domain.StateTransferring
}

func (u *uploadService) cancelled(ctx context.Context, s *session) bool {
	return s.cancelRequested.Load() || ctx.Err() != nil
}

func (u *uploadService) transferPart(ctx, callCtx context.Context, s *session) domain.UploadState {
	if u.cancelled(ctx, s) {
		return domain.StateAborting
	}

	chunk, err := s.readNextPart()
	if err != nil {
		s.fail(domain.StageTransfer, s.partIndex, err)
		u.logger.Error("failed to read part", "upload_id", s.id, "part_index", s.partIndex, "error", err)
		return domain.StateAborting
	}

	s.beginCall()
	ack, err := u.backend.UploadPart(callCtx, s.target, s.backendSession(), s.partIndex, chunk)
	s.endCall()
	if err != nil {
		s.fail(domain.StageTransfer, s.partIndex, err)
		u.logger.Error("failed to upload part", "upload_id", s.id, "part_index", s.partIndex, "error", err)
		return domain.StateAborting
	}

	s.acks = append(s.acks, domain.PartAck{PartIndex: s.partIndex, Token: ack.Token})
	s.offset += int64(len(chunk))
	s.partIndex++

	percent := domain.Percent(s.offset, s.req.File.Size)
	u.logger.Debug("part acknowledged", "upload_id", s.id, "part_index", s.partIndex-1, "offset", s.offset, "percent", percent)
	s.notifyProgress(percent)

	if s.offset >= s.req.File.Size {
		return domain.StateFinalizing
	}
	return domain.StateTransferring
}

func (u *uploadService) finalize(ctx, callCtx context.Context, s *session) domain.UploadState {
	if u.cancelled(ctx, s) {
		return domain.StateAborting
	}

	s.beginCall()
	location, err := u.backend.Complete(callCtx, s.target, s.backendSession(), s.acks)
	s.endCall()
	if err != nil {
		s.fail(domain.StageFinalize, len(s.acks), err)
		u.logger.Error("failed to complete upload", "upload_id", s.id, "parts", len(s.acks), "error", err)
		return domain.StateAborting
	}

	// a teardown or a cancel that landed while Complete was running wins
	if u.cancelled(ctx, s) || !s.claimCompletion() {
		u.logger.Warn("upload cancelled while completing", "upload_id", s.id, "parts", len(s.acks))
		return domain.StateAborting
	}

	u.guard.Unobserve(s.id)
	s.location = location
	u.logger.Info("upload completed", "upload_id", s.id, "location", location, "parts", len(s.acks))
	s.state = domain.StateComplete
	s.notifyComplete()
	return domain.StateComplete
}

func (u *uploadService) abortSession(s *session) domain.UploadState {
	u.abort(s)
	// a teardown abort may have been served before the request it raced,
	// which can recreate what it removed
	if s.takeAbortRaced() {
		u.logger.Info("repeating abort after in-flight request", "upload_id", s.id)
		u.sendAbort(s, s.backendSession())
	}
	u.guard.Unobserve(s.id)

	if s.failure != nil {
		s.state = domain.StateFailed
		s.notifyFailure()
		return domain.StateFailed
	}

	u.logger.Warn("upload cancelled", "upload_id", s.id, "part_index", s.partIndex, "offset", s.offset)
	s.state = domain.StateCancelled
	s.notifyCancel()
	return domain.StateCancelled
}

// abort runs the backend cleanup at most once per session, whether it comes
// from the session itself or from a host teardown. Errors are only logged.
// Nothing is sent before the backend handed out a session, nor after the
// session completed.
func (u *uploadService) abort(s *session) {
	if s.backendSession() == "" {
		u.logger.Debug("no backend session to abort", "upload_id", s.id)
		return
	}

	s.abortOnce.Do(func() {
		sessionID, ok := s.claimAbort()
		if !ok {
			u.logger.Debug("upload already completed, nothing to abort", "upload_id", s.id)
			return
		}
		u.sendAbort(s, sessionID)
	})
}

func (u *uploadService) sendAbort(s *session, sessionID string) {
	ctx := context.Background()
	if u.cfg.AbortTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.cfg.AbortTimeout)
		defer cancel()
	}

	if err := u.backend.Abort(ctx, s.target, sessionID); err != nil {
		u.logger.Error("failed to abort upload", "upload_id", s.id, "key", s.target.Key(), "error", err)
		return
	}
	u.logger.Info("upload aborted", "upload_id", s.id, "key", s.target.Key())
}
