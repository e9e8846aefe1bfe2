package migrate

import (
	"context"
	"fmt"
)

// Step is one migration: a transform from data at version From to data at
// version To. Apply must be atomic at the granularity of one persisted
// entity - a failure partway through a step must never leave a single
// entity half-migrated, though it may leave the world between steps (that is
// what per-step checkpointing is for).
type Step struct {
	From        string
	To          string
	Description string
	Apply       func(ctx context.Context) error
}

// Runner supplies the ordered migration step sequence. The gate decides which
// steps apply and drives them; the runner only owns their bodies and order.
type Runner interface {
	Steps() []Step
}

// StepList is the simplest Runner: a literal ordered slice of steps.
type StepList []Step

// Steps implements Runner.
func (s StepList) Steps() []Step {
	return s
}

// validateSteps enforces the ordering contract: every step advances
// (From < To) and the sequence is non-decreasing (each step's From is not
// below the previous step's To).
func validateSteps(steps []Step) error {
	prev := ""
	for i, step := range steps {
		if !isValidVersion(step.From) || !isValidVersion(step.To) {
			return fmt.Errorf("step %d: invalid version range %q -> %q", i, step.From, step.To)
		}
		if compareVersions(step.From, step.To) >= 0 {
			return fmt.Errorf("step %d: does not advance (%s -> %s)", i, step.From, step.To)
		}
		if prev != "" && compareVersions(step.From, prev) < 0 {
			return fmt.Errorf("step %d: out of order (%s -> %s after %s)", i, step.From, step.To, prev)
		}
		if step.Apply == nil {
			return fmt.Errorf("step %d (%s -> %s): missing apply function", i, step.From, step.To)
		}
		prev = step.To
	}
	return nil
}
