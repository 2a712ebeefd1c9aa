package port

import "github.com/google/uuid"

// LifecycleGuard tracks the cleanup to run for every active session if the
// host goes away before the session reaches a terminal state
type LifecycleGuard interface {
	Observe(id uuid.UUID, cleanup func()) error
	Unobserve(id uuid.UUID)
	// Active is the number of registered sessions, the host is safe to leave at zero
	Active() int
	// Teardown fires every registered cleanup once and does not wait for them
	Teardown()
}
