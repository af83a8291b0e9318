package guard

import "context"

// Guard is a mutual-exclusion flag around one checkout submission.
// TryAcquire reports false, without error, when key is already held.
type Guard interface {
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
