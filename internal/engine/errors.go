package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/qintermediary/exchangeflow/internal/models"
)

// ErrCaseNotFound is returned when the case id is unknown.
var ErrCaseNotFound = errors.New("exchange case not found")

// ErrVersionConflict is returned when a concurrent writer updated the case
// between validation and the stage write. The caller should reload and
// retry; this is the only error kind where an automatic retry is expected.
var ErrVersionConflict = errors.New("exchange case modified concurrently")

// InvalidTransitionError means the target stage is not reachable from the
// current stage per the transition table. No guards were evaluated.
type InvalidTransitionError struct {
	From models.Stage
	To   models.Stage
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("no transition from %s to %s", e.From, e.To)
}

// GuardsNotMetError carries every failed guard with its message.
type GuardsNotMetError struct {
	Failures []models.ConditionResult
}

func (e *GuardsNotMetError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, string(f.Condition))
	}
	return "transition guards not met: " + strings.Join(names, ", ")
}

// ActionPartialFailureError reports that the transition committed but one
// or more auto-actions failed. This is operational information, not an
// invalidation of the state change.
type ActionPartialFailureError struct {
	Failed map[models.Action]error
}

func (e *ActionPartialFailureError) Error() string {
	var result *multierror.Error
	for action, err := range e.Failed {
		result = multierror.Append(result, fmt.Errorf("%s: %w", action, err))
	}
	return "transition committed with failed auto-actions: " + result.Error()
}
