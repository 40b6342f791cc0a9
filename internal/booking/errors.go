package booking

import (
	"errors"
	"fmt"

	"github.com/taiwan-rail-tools/thsrbook/internal/schema"
)

// ErrAborted means the user declined to continue at a confirmation gate.
var ErrAborted = errors.New("booking aborted by user")

// SoldOutError reports a search that completed but found nothing sellable.
// It is actionable by changing the date or time window, unlike ServerError.
type SoldOutError struct {
	Feedback schema.ErrorFeedback
}

func (e *SoldOutError) Error() string {
	return fmt.Sprintf("沒有可售車次：%s（請更換出發日期或時段）", e.Feedback)
}

// ServerError reports feedback messages attached to a stage submission that
// this tool cannot recover from by retrying.
type ServerError struct {
	Stage    int
	Feedback schema.ErrorFeedback
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("stage %d submission rejected: %s", e.Stage, e.Feedback)
}

// PassengerIDError reports a national ID that fails the 10-character format
// check before submission.
type PassengerIDError struct {
	Ordinal int
	Value   string
}

func (e *PassengerIDError) Error() string {
	return fmt.Sprintf("passenger %d national ID %q is not 10 characters", e.Ordinal, e.Value)
}
