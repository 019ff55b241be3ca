package models

type Stage string

const (
	StageDraft                Stage = "DRAFT"
	StageInProgress           Stage = "IN_PROGRESS"
	StageIdentificationPeriod Stage = "IDENTIFICATION_PERIOD"
	StageCompletionPeriod     Stage = "COMPLETION_PERIOD"
	StageOnHold               Stage = "ON_HOLD"
	StageCompleted            Stage = "COMPLETED"
	StageCancelled            Stage = "CANCELLED"
)

// AllStages is the closed set of case stages. Anything outside this list
// is rejected at the API boundary before it reaches the engine.
var AllStages = []Stage{
	StageDraft,
	StageInProgress,
	StageIdentificationPeriod,
	StageCompletionPeriod,
	StageOnHold,
	StageCompleted,
	StageCancelled,
}

func (s Stage) IsValid() bool {
	for _, v := range AllStages {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the stage ends the exchange lifecycle. Both
// terminal stages still permit the administrative reopen edge.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageCancelled
}

// IsActive reports whether the deadline scheduler should still watch the
// case. OnHold cases keep their regulatory clocks running.
func (s Stage) IsActive() bool {
	return s == StageInProgress || s == StageIdentificationPeriod ||
		s == StageCompletionPeriod || s == StageOnHold
}
