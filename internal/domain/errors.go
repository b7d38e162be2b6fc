package domain

import "fmt"

// Sentinel errors for the domain layer. Wrap with fmt.Errorf("%w: ...")
// to attach context; match with errors.Is.
var (
	ErrNotFound         = fmt.Errorf("not found")
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrNothingToUpdate  = fmt.Errorf("nothing to update")
	ErrClassifier       = fmt.Errorf("intent classification failed")
	ErrAgentUnavailable = fmt.Errorf("agent unavailable")
)
