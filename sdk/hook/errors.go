package hook

import "fmt"

// HookError is reported by a notifier that failed. It is logged, never propagated.
type HookError struct {
	Hook   string
	Domain string
	Err    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook for %s failed: %v", e.Hook, e.Domain, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
