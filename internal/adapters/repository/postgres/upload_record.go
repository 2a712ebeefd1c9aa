package postgres

import (
	"context"
	"database/sql"
	"errors"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type sqlUploadRecordRepository struct {
	db SQLQuerier
}

// NewSQLUploadRecordRepository Creates a new sqlUploadRecordRepository
func NewSQLUploadRecordRepository(db SQLQuerier) port.UploadRecordRepository {
	return &sqlUploadRecordRepository{db: db}
}

const selectUploadRecord = `
		SELECT id, file_name, object_key, backend, state, size_bytes, bytes_sent, parts, location, error, created_at, updated_at
		FROM upload_record`

// Create inserts a new upload record
func (s *sqlUploadRecordRepository) Create(ctx context.Context, record domain.UploadRecord) error {
	query := `
		INSERT INTO upload_record (
			id, file_name, object_key, backend, state, size_bytes, bytes_sent, parts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.FileName,
		record.ObjectKey,
		record.Backend,
		record.State,
		record.SizeBytes,
		record.BytesSent,
		record.Parts,
	)
	return err
}

// UpdateProgress stores the acknowledged offset and part count
func (s *sqlUploadRecordRepository) UpdateProgress(ctx context.Context, id uuid.UUID, bytesSent int64, parts int) error {
	query := `
		UPDATE upload_record
		SET bytes_sent = $1, parts = $2, state = $3, updated_at = now()
		WHERE id = $4 AND state <> ALL($5)`

	result, err := s.db.ExecContext(ctx, query, bytesSent, parts, domain.StateTransferring, id, pq.Array(terminalStates()))
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// UpdateState moves the record to state, location and errMsg are stored as given
func (s *sqlUploadRecordRepository) UpdateState(ctx context.Context, id uuid.UUID, state domain.UploadState, location string, errMsg string) error {
	query := `UPDATE upload_record SET state = $1, location = $2, error = $3, updated_at = now() WHERE id = $4`

	result, err := s.db.ExecContext(ctx, query, state, location, errMsg, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (s *sqlUploadRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	query := selectUploadRecord + ` WHERE id = $1`

	var row dbUploadRecord
	err := row.scan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return row.ToDomain(), nil
}

// FindStale lists records still in a non terminal state not updated since updatedBefore
func (s *sqlUploadRecordRepository) FindStale(ctx context.Context, updatedBefore time.Time) ([]domain.UploadRecord, error) {
	query := selectUploadRecord + ` WHERE state <> ALL($1) AND updated_at < $2 ORDER BY updated_at`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(terminalStates()), updatedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.UploadRecord
	for rows.Next() {
		var row dbUploadRecord
		if err := row.scan(rows); err != nil {
			return nil, err
		}
		records = append(records, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func terminalStates() []string {
	return []string{string(domain.StateComplete), string(domain.StateCancelled), string(domain.StateFailed)}
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

type dbUploadRecord struct {
	ID        uuid.UUID `db:"id"`
	FileName  string    `db:"file_name"`
	ObjectKey string    `db:"object_key"`
	Backend   string    `db:"backend"`
	State     string    `db:"state"`
	SizeBytes int64     `db:"size_bytes"`
	BytesSent int64     `db:"bytes_sent"`
	Parts     int       `db:"parts"`
	Location  string    `db:"location"`
	Error     string    `db:"error"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *dbUploadRecord) scan(row scanner) error {
	return row.Scan(
		&r.ID,
		&r.FileName,
		&r.ObjectKey,
		&r.Backend,
		&r.State,
		&r.SizeBytes,
		&r.BytesSent,
		&r.Parts,
		&r.Location,
		&r.Error,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
}

// ToDomain converts db obj to domain
func (r *dbUploadRecord) ToDomain() *domain.UploadRecord {
	return &domain.UploadRecord{
		ID:        r.ID,
		FileName:  r.FileName,
		ObjectKey: r.ObjectKey,
		Backend:   r.Backend,
		State:     domain.UploadState(r.State),
		SizeBytes: r.SizeBytes,
		BytesSent: r.BytesSent,
		Parts:     r.Parts,
		Location:  r.Location,
		Error:     r.Error,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
