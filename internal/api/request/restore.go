package request

type CreateRestoreOperation struct {
	BackupExecutionID string   `json:"backup_execution_id" validate:"required"`
	RestoreType       string   `json:"restore_type" validate:"required"`
	TargetTables      []string `json:"target_tables" validate:"omitempty,dive,table_name"`
	RestoredBy        *string  `json:"restored_by"`
}

type VerifyExecutions struct {
	ExecutionIDs []string `json:"execution_ids" validate:"required,min=1,max=100,dive,required"`
}
