package guard

import "errors"

var (
	ErrEmptyKey      = errors.New("guard key is empty")
	ErrAcquireFailed = errors.New("failed to acquire submission guard")
	ErrReleaseFailed = errors.New("failed to release submission guard")
)
