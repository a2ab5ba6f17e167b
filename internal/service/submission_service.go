package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"confrarias/internal/model"
	"confrarias/internal/pkg"
	"confrarias/internal/repository/mysql"

	"go.uber.org/zap"
)

type SubmissionInput struct {
	ConfrariaName   string `json:"confrariaName"`
	ResponsibleName string `json:"responsibleName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	District        string `json:"district"`
	Council         string `json:"council"`
	Description     string `json:"description"`
}

type SubmissionService struct {
	repo *mysql.SubmissionRepository
	log  *zap.Logger
}

func NewSubmissionService(repo *mysql.SubmissionRepository, log *zap.Logger) *SubmissionService {
	return &SubmissionService{repo: repo, log: log}
}

// Submit records a public confraria signup as Pendente.
func (s *SubmissionService) Submit(ctx context.Context, in SubmissionInput) (*model.ConfrariaSubmission, error) {
	required := []struct {
		val, msg string
		max      int
	}{
		{in.ConfrariaName, "O nome da confraria é obrigatório.", 200},
		{in.ResponsibleName, "O nome do responsável é obrigatório.", 128},
		{in.District, "O distrito é obrigatório.", 64},
		{in.Council, "O concelho é obrigatório.", 64},
	}
	for _, r := range required {
		v := strings.TrimSpace(r.val)
		if v == "" {
			return nil, invalid(r.msg)
		}
		if utf8.RuneCountInString(v) > r.max {
			return nil, invalid("Um dos campos é demasiado longo.")
		}
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Phone)) > 32 {
		return nil, invalid("Telefone inválido.")
	}

	sub := &model.ConfrariaSubmission{
		ID:              pkg.NewID(),
		ConfrariaName:   strings.TrimSpace(in.ConfrariaName),
		ResponsibleName: strings.TrimSpace(in.ResponsibleName),
		Email:           email,
		Phone:           strings.TrimSpace(in.Phone),
		District:        strings.TrimSpace(in.District),
		Council:         strings.TrimSpace(in.Council),
		Description:     strings.TrimSpace(in.Description),
		Status:          model.StatusPendente,
	}
	if err = s.repo.Create(ctx, sub); err != nil {
		return nil, storeErr(s.log, "submission.create", err, "")
	}
	s.log.Info("confraria submission received", zap.String("id", sub.ID))
	return sub, nil
}

func (s *SubmissionService) Get(ctx context.Context, caller Caller, id string) (*model.ConfrariaSubmission, error) {
	if err := Authorize(caller, ActionModerate, "").Err(); err != nil {
		return nil, err
	}
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(s.log, "submission.get", err, "Candidatura não encontrada.")
	}
	return sub, nil
}

// List is the admin queue; an empty status lists every submission.
func (s *SubmissionService) List(ctx context.Context, caller Caller, status model.ModerationStatus, offset, limit int) ([]model.ConfrariaSubmission, error) {
	if err := Authorize(caller, ActionModerate, "").Err(); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, invalid("Estado inválido.")
	}
	list, err := s.repo.List(ctx, status, max(offset, 0), clampLimit(limit, 50, 100))
	if err != nil {
		return nil, storeErr(s.log, "submission.list", err, "")
	}
	return list, nil
}
