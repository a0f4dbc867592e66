package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/backupd/internal/metrics"
	"github.com/edvin/backupd/internal/model"
)

// EnvironmentProduction is the environment name that selects the strict
// verification policy.
const EnvironmentProduction = "production"

// VerificationPolicy decides what happens when an otherwise valid execution
// has no usable checksum row.
type VerificationPolicy struct {
	AllowMissingChecksum bool
}

// PolicyForEnvironment is strict in production and permissive elsewhere.
func PolicyForEnvironment(env string) VerificationPolicy {
	return VerificationPolicy{AllowMissingChecksum: env != EnvironmentProduction}
}

// Verification outcome labels.
const (
	VerifyOK               = "ok"
	VerifyNotFound         = "not_found"
	VerifyNotCompleted     = "not_completed"
	VerifyMissingFile      = "missing_file"
	VerifyEmptyFile        = "empty_file"
	VerifyNoChecksum       = "no_checksum"
	VerifyStorageUnavail   = "storage_unavailable"
	VerifyPermissiveAccept = "accepted_without_checksum"
)

// IntegrityVerifier decides whether a completed execution can be trusted.
type IntegrityVerifier struct {
	db     DB
	policy VerificationPolicy
	logger zerolog.Logger
}

func NewIntegrityVerifier(db DB, policy VerificationPolicy, logger zerolog.Logger) *IntegrityVerifier {
	return &IntegrityVerifier{
		db:     db,
		policy: policy,
		logger: logger.With().Str("component", "verifier").Logger(),
	}
}

// Verify never fails: every internal error resolves to a verdict.
func (v *IntegrityVerifier) Verify(ctx context.Context, executionID string) bool {
	ok, reason := v.verify(ctx, executionID)
	metrics.Verifications.WithLabelValues(reason).Inc()
	return ok
}

func (v *IntegrityVerifier) verify(ctx context.Context, executionID string) (bool, string) {
	log := v.logger.With().Str("execution_id", executionID).Logger()

	exec, err := scanExecution(v.db.QueryRow(ctx,
		`SELECT `+executionColumns+` FROM backup_executions WHERE id = $1`, executionID))
	if err != nil {
		log.Debug().Err(err).Msg("execution not loadable")
		return false, VerifyNotFound
	}

	if exec.Status != model.StatusCompleted {
		return false, VerifyNotCompleted
	}
	if exec.FilePath == nil || *exec.FilePath == "" {
		return false, VerifyMissingFile
	}
	if !exec.HasArtifact() {
		return false, VerifyEmptyFile
	}

	var sum model.StorageChecksum
	err = v.db.QueryRow(ctx,
		`SELECT backup_execution_id, checksum_md5, checksum_sha256 FROM backup_storage
		 WHERE backup_execution_id = $1 LIMIT 1`, executionID,
	).Scan(&sum.BackupExecutionID, &sum.ChecksumMD5, &sum.ChecksumSHA256)
	switch {
	case err == nil && sum.HasChecksum():
		return true, VerifyOK
	case err == nil || errors.Is(err, pgx.ErrNoRows):
		return v.withoutChecksum(log, VerifyNoChecksum, nil)
	default:
		return v.withoutChecksum(log, VerifyStorageUnavail, err)
	}
}

func (v *IntegrityVerifier) withoutChecksum(log zerolog.Logger, reason string, cause error) (bool, string) {
	if v.policy.AllowMissingChecksum {
		log.Debug().Err(cause).Str("reason", reason).Msg("accepting backup without checksum")
		return true, VerifyPermissiveAccept
	}
	msg := "backup has no checksum in production"
	if reason == VerifyStorageUnavail {
		msg = "backup storage verification unavailable in production"
	}
	log.Error().Err(cause).Bool("alert", true).Str("reason", reason).Msg(msg)
	return false, reason
}

const verifyConcurrency = 4

// VerifyMany verifies the given executions concurrently.
func (v *IntegrityVerifier) VerifyMany(ctx context.Context, executionIDs []string) map[string]bool {
	results := make([]bool, len(executionIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyConcurrency)
	for i, id := range executionIDs {
		g.Go(func() error {
			results[i] = v.Verify(gctx, id)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]bool, len(executionIDs))
	for i, id := range executionIDs {
		out[id] = results[i]
	}
	return out
}
