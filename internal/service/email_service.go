package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"confrarias/internal/pkg"
	"confrarias/internal/repository/redis"

	"go.uber.org/zap"
)

type EmailService struct {
	mailer pkg.Mailer
	codes  *redis.EmailRepository
	log    *zap.Logger
}

func NewEmailService(mailer pkg.Mailer, codes *redis.EmailRepository, log *zap.Logger) *EmailService {
	return &EmailService{mailer: mailer, codes: codes, log: log}
}

var codeSubjects = map[string][2]string{
	redis.ScopeRegister: {"Registo", "Código de registo"},
	redis.ScopeReset:    {"Recuperação de palavra-passe", "Código de recuperação"},
}

// SendCode stores a pending code, mails it, and only then confirms it, so a
// code that was never delivered can never be used.
func (s *EmailService) SendCode(ctx context.Context, scope, email string) error {
	subj, ok := codeSubjects[scope]
	if !ok {
		return invalid("Tipo de código inválido.")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err = s.codes.SavePending(ctx, scope, email, code); err != nil {
		s.log.Error("save pending code failed", zap.String("scope", scope), zap.Error(err))
		return upstream("Não foi possível enviar o código.")
	}

	html := pkg.EmailCodeHTML(subj[0], code, redis.DefaultEmailCodeTTL)
	if err = s.mailer.Send(email, subj[1], html); err != nil {
		_ = s.codes.DeletePending(ctx, scope, email)
		s.log.Error("send code mail failed", zap.String("scope", scope), zap.Error(err))
		return upstream("Não foi possível enviar o código.")
	}

	if err = s.codes.Confirm(ctx, scope, email); err != nil {
		_ = s.codes.DeletePending(ctx, scope, email)
		s.log.Error("confirm code failed", zap.String("scope", scope), zap.Error(err))
		return upstream("Não foi possível enviar o código.")
	}
	return nil
}

// Verify consumes the code; a matching code works once.
func (s *EmailService) Verify(ctx context.Context, scope, email, code string) (bool, error) {
	ok, err := s.codes.Consume(ctx, scope, strings.ToLower(strings.TrimSpace(email)), code)
	if errors.Is(err, redis.ErrEmailNotFound) {
		return false, nil
	}
	if err != nil {
		s.log.Error("verify code failed", zap.String("scope", scope), zap.Error(err))
		return false, upstream("Não foi possível validar o código.")
	}
	return ok, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("Endereço de e-mail inválido.")
	}
	return email, nil
}
