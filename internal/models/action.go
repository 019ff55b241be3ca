package models

// Action names a side effect run automatically after a committed
// transition. Handlers are registered per Action in the engine.
type Action string

const (
	ActionSeedStageWorkItems            Action = "seed_stage_work_items"
	ActionStartDeadlineTimers           Action = "start_deadline_timers"
	ActionNotifyCoordinator             Action = "notify_coordinator"
	ActionNotifyAllParties              Action = "notify_all_parties"
	ActionGenerateCompletionCertificate Action = "generate_completion_certificate"
	ActionArchiveCase                   Action = "archive_case"
)
