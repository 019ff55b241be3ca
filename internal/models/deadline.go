package models

type DeadlineKind string

const (
	DeadlineIdentification DeadlineKind = "IDENTIFICATION"
	DeadlineCompletion     DeadlineKind = "COMPLETION"
)

// ReminderThresholds are the lead times, in days before a deadline, at
// which a reminder fires. Each fires at most once per case and deadline.
var ReminderThresholds = []int{30, 14, 7, 1}

// ThresholdOverdue marks the one-time event raised when a deadline has
// passed without the case leaving the stage that owns it.
const ThresholdOverdue = 0
