package core

import (
	"github.com/rs/zerolog"
)

// Collaborators are the external pieces the services depend on. Nil
// entries fall back to the store-procedure adapters and the no-op guard.
type Collaborators struct {
	Engine       Engine
	Scheduler    Recalculator
	Guard        ExecutionGuard
	Verification VerificationPolicy
	Restore      RestorePolicy
}

type Services struct {
	Jobs       *BackupJobService
	Executions *BackupExecutionService
	Verifier   *IntegrityVerifier
	Restores   *RestoreService
}

func NewServices(db DB, c Collaborators, logger zerolog.Logger) *Services {
	if c.Engine == nil {
		c.Engine = NewRPCEngine(db)
	}
	if c.Scheduler == nil {
		c.Scheduler = NewRPCRecalculator(db)
	}
	if c.Guard == nil {
		c.Guard = NoopGuard{}
	}

	verifier := NewIntegrityVerifier(db, c.Verification, logger)
	return &Services{
		Jobs:       NewBackupJobService(db, c.Scheduler, logger),
		Executions: NewBackupExecutionService(db, c.Engine, verifier, c.Guard, logger),
		Verifier:   verifier,
		Restores:   NewRestoreService(db, c.Restore, logger),
	}
}
