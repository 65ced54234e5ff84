// Package services holds the application services of budgetkeeper: accounts,
// settings, the security policy evaluator, encryption toggles, remembered
// credentials, backup and restore orchestration and the greeting counters.
package services

import (
	"context"
	"time"
)

// CurrentUserProvider resolves the logged-in user. It returns
// common.ErrNotLoggedIn when there is none.
type CurrentUserProvider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// ProgressFunc receives human-readable stage text during long operations.
type ProgressFunc func(stage string)

func (p ProgressFunc) report(stage string) {
	if p != nil {
		p(stage)
	}
}

// Clock is the time source used by the services.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
