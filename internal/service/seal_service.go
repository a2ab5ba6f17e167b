package service

import (
	"context"

	"confrarias/internal/metrics"
	"confrarias/internal/repository/mysql"

	"go.uber.org/zap"
)

type SealResult struct {
	Sealed bool  `json:"sealed"`
	Selos  int64 `json:"selos"`
}

type SealService struct {
	repo *mysql.SealRepository
	log  *zap.Logger
}

func NewSealService(repo *mysql.SealRepository, log *zap.Logger) *SealService {
	return &SealService{repo: repo, log: log}
}

// Toggle adds the caller to the discovery's seal givers, or removes them if
// they already sealed it. The count and the membership change together.
// Discoveries the caller cannot read are NotFound, as in Get.
func (s *SealService) Toggle(ctx context.Context, caller Caller, discoveryID string) (*SealResult, error) {
	if err := Authorize(caller, ActionSeal, "").Err(); err != nil {
		return nil, err
	}
	if discoveryID == "" {
		return nil, invalid("Identificador em falta.")
	}
	sealed, selos, err := s.repo.Toggle(ctx, discoveryID, caller.ID, caller.IsAdmin())
	if err != nil {
		return nil, storeErr(s.log, "seal.toggle", err, "Descoberta não encontrada.")
	}
	result := "unsealed"
	if sealed {
		result = "sealed"
	}
	metrics.SealToggles.WithLabelValues(result).Inc()
	return &SealResult{Sealed: sealed, Selos: selos}, nil
}

// Mismatches lists discoveries whose selos disagree with their seal rows.
// It should always be empty; the check-seals command reports it.
func (s *SealService) Mismatches(ctx context.Context) ([]string, error) {
	ids, err := s.repo.CountMismatches(ctx)
	if err != nil {
		return nil, storeErr(s.log, "seal.mismatches", err, "")
	}
	return ids, nil
}
