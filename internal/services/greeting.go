package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/metadata"
)

const visitCountPrefix = "visit_count:"

// Period names the part of the day for hour h.
func Period(h int) string {
	switch {
	case h >= 4 && h <= 10:
		return "pagi"
	case h >= 11 && h <= 14:
		return "siang"
	case h >= 15 && h <= 17:
		return "sore"
	default:
		return "malam"
	}
}

func visitKey(userID, period string) string {
	return visitCountPrefix + userID + ":" + period
}

type GreetingService struct {
	store metadata.Repository
	users CurrentUserProvider
	clock Clock
}

func NewGreetingService(store metadata.Repository, users CurrentUserProvider) *GreetingService {
	return &GreetingService{store: store, users: users}
}

func (s *GreetingService) WithClock(c Clock) *GreetingService {
	s.clock = c
	return s
}

func (s *GreetingService) VisitCount(ctx context.Context, userID, period string) (int, error) {
	v, err := s.store.Get(ctx, visitKey(userID, period))
	if err != nil {
		return 0, fmt.Errorf("read visit count: %w", err)
	}
	if v == nil {
		return 0, nil
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// Greet counts a visit in the current period and returns the greeting.
// Without a logged-in user nothing is counted.
func (s *GreetingService) Greet(ctx context.Context, name string) (string, error) {
	period := Period(s.clock.now().Hour())

	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return fmt.Sprintf("Selamat %s, %s!", period, name), nil
	}

	n, err := s.VisitCount(ctx, userID, period)
	if err != nil {
		return "", err
	}
	n++
	if err := s.store.Set(ctx, visitKey(userID, period), []byte(strconv.Itoa(n))); err != nil {
		return "", fmt.Errorf("store visit count: %w", err)
	}

	if n == 1 {
		return fmt.Sprintf("Selamat %s, %s!", period, name), nil
	}
	return fmt.Sprintf("Selamat %s lagi, %s!", period, name), nil
}

// Reset removes every visit counter of userID.
func (s *GreetingService) Reset(ctx context.Context, userID string) error {
	keys, err := s.store.Keys(ctx, visitCountPrefix+userID+":")
	if err != nil {
		return fmt.Errorf("list visit counters: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.store.DeleteMany(ctx, keys); err != nil {
		return fmt.Errorf("delete visit counters: %w", err)
	}
	return nil
}
