package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"confrarias/internal/handler"
	"confrarias/internal/middleware"
	"confrarias/internal/model"
	"confrarias/internal/pkg"
	"confrarias/internal/repository/mysql"
	rrepo "confrarias/internal/repository/redis"
	"confrarias/internal/service"
	"confrarias/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type nopMailer struct{}

func (nopMailer) Send(to, subject, htmlBody string) error { return nil }

type staticSuggester struct{ tags []string }

func (s staticSuggester) Suggest(ctx context.Context, content string) ([]string, error) {
	return s.tags, nil
}

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T, rps float64, burst int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:router_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, mysql.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zap.NewNop()
	tokens := pkg.NewTokenManager(strings.Repeat("k", 32), strings.Repeat("r", 32), 15*time.Minute, time.Hour)
	userRepo := &mysql.UserRepository{DB: db}
	sessions := &rrepo.SessionRepository{RDB: rdb}
	uploads := service.NewUploadService(storage.NoopUploader{}, pkg.CompressOptions{}, log)
	emails := service.NewEmailService(nopMailer{}, &rrepo.EmailRepository{RDB: rdb}, log)
	users := service.NewUserService(userRepo, sessions, emails, uploads, tokens, log)

	engine := InitRouter(Deps{
		Handlers: Handlers{
			User:       handler.NewUserHandler(users),
			Email:      handler.NewEmailHandler(emails),
			Profile:    handler.NewProfileHandler(users, 1<<20),
			Discovery:  handler.NewDiscoveryHandler(service.NewDiscoveryService(&mysql.DiscoveryRepository{DB: db}, log), service.NewSealService(&mysql.SealRepository{DB: db}, log)),
			Moderation: handler.NewModerationHandler(service.NewModerationService(&mysql.ModerationRepository{DB: db}, log)),
			Submission: handler.NewSubmissionHandler(service.NewSubmissionService(&mysql.SubmissionRepository{DB: db}, log)),
			Event:      handler.NewEventHandler(service.NewEventService(&mysql.EventRepository{DB: db}, userRepo, log)),
			Post:       handler.NewPostHandler(service.NewPostService(&mysql.PostRepository{DB: db}, userRepo, log), service.NewTagService(staticSuggester{tags: []string{"vinho"}}, log)),
			Upload:     handler.NewUploadHandler(uploads, 1<<20),
		},
		Auth:    middleware.NewAuthenticator(tokens, sessions, users, log),
		Limiter: middleware.NewRateLimiter(rps, burst),
		Log:     log,
	})
	return &testServer{engine: engine, db: db}
}

func (s *testServer) seedUser(t *testing.T, username string, role model.Role) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		ID:       pkg.NewID(),
		Username: username,
		Password: string(hash),
		Email:    username + "@example.pt",
		Role:     role,
		Status:   model.UserAtivo,
	}
	require.NoError(t, s.db.Create(u).Error)
	return u.ID
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/user/login", "", gin.H{"login": username, "password": "segredo123"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var pair pkg.Pair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	return pair.AccessToken
}

func TestRouter_DiscoveryModerationAndSeal(t *testing.T) {
	s := newTestServer(t, 1000, 1000)
	s.seedUser(t, "admin", model.RoleAdmin)
	s.seedUser(t, "u1", model.RoleConfrade)
	adminToken := s.login(t, "admin")
	userToken := s.login(t, "u1")

	code, env := s.do(t, http.MethodPost, "/api/discoveries", userToken, gin.H{"title": "Tasca da Esquina", "category": "Restaurantes"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var d model.Discovery
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, model.StatusPendente, d.Status)

	code, env = s.do(t, http.MethodGet, "/api/discoveries", "", nil)
	require.Equal(t, http.StatusOK, code)
	var page service.DiscoveryPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Empty(t, page.Items)

	statusPath := "/api/admin/discoveries/" + d.ID + "/status"
	code, env = s.do(t, http.MethodPut, statusPath, userToken, gin.H{"status": "Aprovado"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)

	code, _ = s.do(t, http.MethodPut, statusPath, adminToken, gin.H{"status": "Aprovado"})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPut, statusPath, adminToken, gin.H{"status": "Aprovado"})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodPut, "/api/admin/discoveries/missing/status", adminToken, gin.H{"status": "Rejeitado"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)

	code, env = s.do(t, http.MethodPut, statusPath, adminToken, gin.H{"status": "Arquivado"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPost, "/api/discoveries/"+d.ID+"/seal", userToken, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var res service.SealResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, service.SealResult{Sealed: true, Selos: 1}, res)

	code, env = s.do(t, http.MethodGet, "/api/discoveries/"+d.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, int64(1), d.Selos)
	assert.Len(t, d.SealGivers, 1)

	code, _ = s.do(t, http.MethodPost, "/api/discoveries/"+d.ID+"/seal", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_SessionReplacedByNewLogin(t *testing.T) {
	s := newTestServer(t, 1000, 1000)
	s.seedUser(t, "u1", model.RoleConfrade)
	first := s.login(t, "u1")
	second := s.login(t, "u1")

	code, env := s.do(t, http.MethodPost, "/api/auth/logout", first, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodPost, "/api/auth/logout", second, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/auth/logout", second, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_SuggestTags(t *testing.T) {
	s := newTestServer(t, 1000, 1000)
	s.seedUser(t, "conf", model.RoleConfraria)
	token := s.login(t, "conf")

	code, env := s.do(t, http.MethodPost, "/api/posts/suggest-tags", token, gin.H{"content": ""})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"tags":[]}`, string(env.Data))

	code, env = s.do(t, http.MethodPost, "/api/posts/suggest-tags", token, gin.H{"content": "Vinho verde do Minho"})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"tags":["vinho"]}`, string(env.Data))
}

func TestRouter_UploadWithoutStorageIsUpstreamFailure(t *testing.T) {
	s := newTestServer(t, 1000, 1000)
	s.seedUser(t, "u1", model.RoleConfrade)
	token := s.login(t, "u1")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "a.png")
	require.NoError(t, err)
	_, err = fw.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Não foi possível carregar a imagem.", env.Error)
}

func TestRouter_RateLimitedSignup(t *testing.T) {
	s := newTestServer(t, 0.001, 2)
	form := gin.H{
		"confrariaName":   "Confraria do Sável",
		"responsibleName": "Ana",
		"email":           "savel@example.pt",
		"district":        "Santarém",
		"council":         "Coruche",
	}
	for i := 0; i < 2; i++ {
		code, env := s.do(t, http.MethodPost, "/api/submissions", "", form)
		require.Equal(t, http.StatusCreated, code, env.Error)
	}
	code, env := s.do(t, http.MethodPost, "/api/submissions", "", form)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.False(t, env.Success)
}

func TestRouter_HealthAndNotFound(t *testing.T) {
	s := newTestServer(t, 1000, 1000)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	code, env := s.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}
