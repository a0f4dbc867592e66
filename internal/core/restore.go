package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/backupd/internal/model"
)

// RestoreRequest asks for a restore from one backup execution.
type RestoreRequest struct {
	ExecutionID  string   `json:"backup_execution_id" validate:"required"`
	RestoreType  string   `json:"restore_type" validate:"required,oneof=full partial table"`
	TargetTables []string `json:"target_tables"`
	RestoredBy   *string  `json:"restored_by"`
}

// RestorePolicy controls which sources a restore may use.
type RestorePolicy struct {
	RequireCompletedSource bool
}

// DefaultRestorePolicy only allows restores from completed executions.
func DefaultRestorePolicy() RestorePolicy {
	return RestorePolicy{RequireCompletedSource: true}
}

// RestoreService records restore requests. The restore itself is carried out
// by an external worker that picks up pending operations.
type RestoreService struct {
	db     DB
	policy RestorePolicy
	logger zerolog.Logger
}

func NewRestoreService(db DB, policy RestorePolicy, logger zerolog.Logger) *RestoreService {
	return &RestoreService{
		db:     db,
		policy: policy,
		logger: logger.With().Str("component", "restores").Logger(),
	}
}

func (s *RestoreService) CreateRestoreOperation(ctx context.Context, req RestoreRequest) (*model.RestoreOperation, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.RestoreType != model.RestoreTypeFull && len(req.TargetTables) == 0 {
		return nil, &ValidationError{Field: "target_tables", Message: "required for " + req.RestoreType + " restores"}
	}

	if s.policy.RequireCompletedSource {
		if err := s.checkSource(ctx, req.ExecutionID); err != nil {
			return nil, err
		}
	}

	op := &model.RestoreOperation{
		ID:                uuid.NewString(),
		BackupExecutionID: req.ExecutionID,
		Status:            model.StatusPending,
		RestoreType:       req.RestoreType,
		TargetTables:      req.TargetTables,
		StartedAt:         time.Now().UTC(),
		RestoredBy:        req.RestoredBy,
		Verified:          false,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO restore_operations (id, backup_execution_id, status, restore_type, target_tables,
		 started_at, restored_by, verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		op.ID, op.BackupExecutionID, op.Status, op.RestoreType, op.TargetTables,
		op.StartedAt, op.RestoredBy, op.Verified,
	)
	if err != nil {
		return nil, storeErr("insert restore operation", err)
	}

	s.logger.Info().
		Str("restore_id", op.ID).
		Str("execution_id", op.BackupExecutionID).
		Str("restore_type", op.RestoreType).
		Msg("restore operation created")
	return op, nil
}

func (s *RestoreService) checkSource(ctx context.Context, executionID string) error {
	var status string
	err := s.db.QueryRow(ctx, `SELECT status FROM backup_executions WHERE id = $1`, executionID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Resource: "backup execution", ID: executionID}
		}
		return storeErr("get restore source "+executionID, err)
	}
	if status != model.StatusCompleted {
		return &ValidationError{Field: "backup_execution_id", Message: "source execution is " + status + ", not completed"}
	}
	return nil
}

// GetRestoreOperations lists restores newest first.
func (s *RestoreService) GetRestoreOperations(ctx context.Context, limit int) ([]model.RestoreOperation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+restoreColumns+` FROM restore_operations ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, storeErr("list restore operations", err)
	}
	defer rows.Close()

	ops := []model.RestoreOperation{}
	for rows.Next() {
		op, err := scanRestore(rows)
		if err != nil {
			return nil, storeErr("scan restore operation", err)
		}
		ops = append(ops, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate restore operations", err)
	}
	return ops, nil
}
