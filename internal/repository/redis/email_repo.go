package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	EmailCodePrefix     = "email:code"

	ScopeRegister = "register"
	ScopeReset    = "reset"

	// two-phase keys
	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
)

var (
	ErrEmailNotFound       = errors.New("email code not found")
	ErrEmailCodeDelFailed  = errors.New("email code delete failed")
	ErrCodePendingFailed   = errors.New("code pending failed")
	ErrCodeConfirmedFailed = errors.New("code confirmed failed")
)

// moves the pending code to the confirmed key and resets its ttl atomically
var confirmScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1])
return 1
`)

// consumes the confirmed code only when it matches
var consumeScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return -1
end
if val ~= ARGV[1] then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

type EmailRepository struct {
	RDB *redis.Client
}

func (e *EmailRepository) key(scope, phase, email string) string {
	return fmt.Sprintf("%s:%s:%s:%s", EmailCodePrefix, scope, phase, email)
}

// SavePending stores a freshly generated code before the mail is sent.
func (e *EmailRepository) SavePending(ctx context.Context, scope, email, code string) error {
	if err := e.RDB.Set(ctx, e.key(scope, PendingSuffix, email), code, DefaultEmailCodeTTL).Err(); err != nil {
		return ErrCodePendingFailed
	}
	return nil
}

// Confirm is called once the mail went out.
func (e *EmailRepository) Confirm(ctx context.Context, scope, email string) error {
	src := e.key(scope, PendingSuffix, email)
	dst := e.key(scope, ConfirmedSuffix, email)
	px := int64(DefaultEmailCodeTTL / time.Millisecond)
	ok, err := confirmScript.Run(ctx, e.RDB, []string{src, dst}, px).Int()
	if err != nil || ok != 1 {
		return ErrCodeConfirmedFailed
	}
	return nil
}

// DeletePending is idempotent.
func (e *EmailRepository) DeletePending(ctx context.Context, scope, email string) error {
	if err := e.RDB.Del(ctx, e.key(scope, PendingSuffix, email)).Err(); err != nil {
		return ErrEmailCodeDelFailed
	}
	return nil
}

// Consume checks the confirmed code and deletes it on match, so a code works once.
func (e *EmailRepository) Consume(ctx context.Context, scope, email, code string) (bool, error) {
	res, err := consumeScript.Run(ctx, e.RDB, []string{e.key(scope, ConfirmedSuffix, email)}, code).Int()
	if err != nil {
		return false, err
	}
	if res == -1 {
		return false, ErrEmailNotFound
	}
	return res == 1, nil
}
