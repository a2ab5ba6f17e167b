package service

import (
	"errors"

	"confrarias/internal/repository/mysql"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrUpstream         = errors.New("upstream failure")
)

// Error carries a user-facing message next to its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func denied(msg string) error   { return &Error{Kind: ErrPermissionDenied, Msg: msg} }
func notFound(msg string) error { return &Error{Kind: ErrNotFound, Msg: msg} }
func invalid(msg string) error  { return &Error{Kind: ErrValidation, Msg: msg} }
func upstream(msg string) error { return &Error{Kind: ErrUpstream, Msg: msg} }

// storeErr classifies a repository error. Anything the store does not
// recognise is logged and reported as an upstream failure.
func storeErr(log *zap.Logger, op string, err error, missing string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mysql.ErrNotFound):
		return notFound(missing)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return invalid("Registo duplicado.")
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	log.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return upstream("Erro ao aceder aos dados. Tente novamente.")
}
