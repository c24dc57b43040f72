package services

import (
	"context"
	"fmt"

	"ledger/internal/core"
)

// SummaryService computes aggregate totals over the full transaction set.
// Results are computed fresh on every call; nothing is cached.
type SummaryService struct {
	store TransactionStore
}

func NewSummaryService(store TransactionStore) *SummaryService {
	return &SummaryService{store: store}
}

// Summarize returns total income, total expense and their balance.
func (s *SummaryService) Summarize(ctx context.Context) (core.Summary, error) {
	summary, err := s.store.Summarize(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize: %w", err)
	}
	return summary, nil
}
