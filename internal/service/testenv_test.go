package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"confrarias/internal/model"
	"confrarias/internal/pkg"
	"confrarias/internal/repository/mysql"
	rrepo "confrarias/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, mysql.AutoMigrate(db))
	return db
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type fakeMailer struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[to] = codePattern.FindString(htmlBody)
	return nil
}

func (m *fakeMailer) codeFor(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[to]
}

// env wires every service over sqlite and miniredis.
type env struct {
	db     *gorm.DB
	mr     *miniredis.Miniredis
	mailer *fakeMailer
	tokens *pkg.TokenManager

	users       *UserService
	emails      *EmailService
	discoveries *DiscoveryService
	seals       *SealService
	moderation  *ModerationService
	submissions *SubmissionService
	events      *EventService
	posts       *PostService
	provision   *ProvisionService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := newTestDB(t)
	mr, rdb := newTestRedis(t)
	log := zap.NewNop()
	mailer := &fakeMailer{}
	tokens := pkg.NewTokenManager(strings.Repeat("a", 32), strings.Repeat("b", 32), 15*time.Minute, time.Hour)

	userRepo := &mysql.UserRepository{DB: db}
	subRepo := &mysql.SubmissionRepository{DB: db}
	emails := NewEmailService(mailer, &rrepo.EmailRepository{RDB: rdb}, log)
	uploads := NewUploadService(&memUploader{}, pkg.CompressOptions{MaxDimension: 64, TargetBytes: 1 << 20, Quality: 85}, log)

	return &env{
		db:          db,
		mr:          mr,
		mailer:      mailer,
		tokens:      tokens,
		users:       NewUserService(userRepo, &rrepo.SessionRepository{RDB: rdb}, emails, uploads, tokens, log),
		emails:      emails,
		discoveries: NewDiscoveryService(&mysql.DiscoveryRepository{DB: db}, log),
		seals:       NewSealService(&mysql.SealRepository{DB: db}, log),
		moderation:  NewModerationService(&mysql.ModerationRepository{DB: db}, log),
		submissions: NewSubmissionService(subRepo, log),
		events:      NewEventService(&mysql.EventRepository{DB: db}, userRepo, log),
		posts:       NewPostService(&mysql.PostRepository{DB: db}, userRepo, log),
		provision:   NewProvisionService(subRepo, userRepo, log),
	}
}

// seedUser inserts an account directly and returns it as a caller.
func (e *env) seedUser(t *testing.T, username string, role model.Role) Caller {
	t.Helper()
	u := &model.User{
		ID:       pkg.NewID(),
		Username: username,
		Password: "x",
		Email:    username + "@example.pt",
		Role:     role,
		Status:   model.UserAtivo,
		Name:     username,
	}
	require.NoError(t, e.db.Create(u).Error)
	return Caller{ID: u.ID, Role: u.Role, Status: u.Status}
}

func (e *env) seedDiscovery(t *testing.T, author Caller, title string) *model.Discovery {
	t.Helper()
	d, err := e.discoveries.Submit(context.Background(), author, DiscoveryInput{Title: title, Category: "Doçaria"})
	require.NoError(t, err)
	return d
}
