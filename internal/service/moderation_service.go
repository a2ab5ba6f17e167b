package service

import (
	"context"

	"confrarias/internal/metrics"
	"confrarias/internal/model"
	"confrarias/internal/repository/mysql"

	"go.uber.org/zap"
)

type ModerationService struct {
	repo *mysql.ModerationRepository
	log  *zap.Logger
}

func NewModerationService(repo *mysql.ModerationRepository, log *zap.Logger) *ModerationService {
	return &ModerationService{repo: repo, log: log}
}

// SetStatus moves a discovery or submission to any of the three states.
// Repeating the current status succeeds without writing anything.
func (s *ModerationService) SetStatus(ctx context.Context, caller Caller, target model.ModerationTarget, id string, status model.ModerationStatus) error {
	if err := Authorize(caller, ActionModerate, "").Err(); err != nil {
		return err
	}
	if !target.Valid() {
		return invalid("Tipo de conteúdo inválido.")
	}
	if !status.Valid() {
		return invalid("Estado inválido.")
	}
	if id == "" {
		return invalid("Identificador em falta.")
	}

	from, changed, err := s.repo.SetStatus(ctx, target, id, status, caller.ID)
	if err != nil {
		return storeErr(s.log, "moderation.set_status", err, notFoundMessage(target))
	}
	if changed {
		metrics.ModerationTransitions.WithLabelValues(string(target), string(from), string(status)).Inc()
		s.log.Info("moderation status changed",
			zap.String("target", string(target)),
			zap.String("id", id),
			zap.String("from", string(from)),
			zap.String("to", string(status)),
			zap.String("actor", caller.ID),
		)
	}
	return nil
}

// ListActions returns the audit trail. Empty target and id list everything.
func (s *ModerationService) ListActions(ctx context.Context, caller Caller, target model.ModerationTarget, id string, limit int) ([]model.ModerationAction, error) {
	if err := Authorize(caller, ActionModerate, "").Err(); err != nil {
		return nil, err
	}
	if target != "" && !target.Valid() {
		return nil, invalid("Tipo de conteúdo inválido.")
	}
	list, err := s.repo.ListActions(ctx, target, id, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, storeErr(s.log, "moderation.list_actions", err, "")
	}
	return list, nil
}

func notFoundMessage(target model.ModerationTarget) string {
	if target == model.TargetSubmission {
		return "Candidatura não encontrada."
	}
	return "Descoberta não encontrada."
}
