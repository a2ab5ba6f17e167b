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

type ProvisionService struct {
	submissions *mysql.SubmissionRepository
	users       *mysql.UserRepository
	log         *zap.Logger
}

func NewProvisionService(submissions *mysql.SubmissionRepository, users *mysql.UserRepository, log *zap.Logger) *ProvisionService {
	return &ProvisionService{submissions: submissions, users: users, log: log}
}

// Provision creates the confraria account for an approved submission and
// returns it with a temporary password. It is run by an operator, never as
// a side effect of approval.
func (s *ProvisionService) Provision(ctx context.Context, submissionID, username string) (*model.User, string, error) {
	sub, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, "", storeErr(s.log, "provision.submission", err, "Candidatura não encontrada.")
	}
	if sub.Status != model.StatusAprovado {
		return nil, "", invalid("A candidatura ainda não foi aprovada.")
	}
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 64 {
		return nil, "", invalid("O nome de utilizador deve ter entre 3 e 64 caracteres.")
	}

	password, err := pkg.RandPassword(12)
	if err != nil {
		return nil, "", err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		ID:          pkg.NewID(),
		Username:    username,
		Password:    string(hash),
		Email:       sub.Email,
		Role:        model.RoleConfraria,
		Status:      model.UserAtivo,
		Name:        sub.ConfrariaName,
		Phone:       sub.Phone,
		District:    sub.District,
		Council:     sub.Council,
		Description: sub.Description,
	}
	if err = s.users.Create(ctx, user); err != nil {
		return nil, "", storeErr(s.log, "provision.create_user", err, "")
	}
	s.log.Info("confraria provisioned", zap.String("submission_id", sub.ID), zap.String("user_id", user.ID))
	return user, password, nil
}
