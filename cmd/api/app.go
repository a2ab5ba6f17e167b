package main

import (
	"context"
	"errors"
	"fmt"

	"confrarias/internal/ai"
	"confrarias/internal/config"
	"confrarias/internal/handler"
	"confrarias/internal/middleware"
	"confrarias/internal/pkg"
	"confrarias/internal/repository/mysql"
	rrepo "confrarias/internal/repository/redis"
	"confrarias/internal/router"
	"confrarias/internal/service"
	"confrarias/internal/storage"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func loadConfig(configDir string) (*config.Config, *zap.Logger, error) {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, nil, err
	}
	log, err := pkg.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	return mysql.InitDB(cfg.Database.DSN, mysql.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
}

// app owns every long-lived client of the serve command.
type app struct {
	engine   *gin.Engine
	relayer  *service.OutboxRelayer
	db       *gorm.DB
	rdb      *goredis.Client
	producer *pkg.KafkaProducer
}

func (a *app) Close() {
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{}
	var err error
	if a.db, err = openDB(cfg); err != nil {
		return nil, fmt.Errorf("failed to connect mysql: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err = mysql.AutoMigrate(a.db); err != nil {
			a.Close()
			return nil, fmt.Errorf("auto migrate failed: %w", err)
		}
	}
	if a.rdb, err = rrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var suggester service.TagSuggester
	if cfg.Gemini.APIKey != "" {
		gen, err := ai.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			a.Close()
			return nil, err
		}
		suggester = ai.NewSuggester(gen, cfg.Gemini.Timeout, log)
	} else {
		log.Warn("gemini api key not set, tag suggestions disabled")
	}

	sender := service.LogSender(log)
	if cfg.Kafka.Enabled {
		if a.producer, err = pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic}); err != nil {
			a.Close()
			return nil, err
		}
		sender = service.KafkaSender(a.producer)
	}

	tokens := pkg.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	mailer := pkg.NewSMTPMailer(pkg.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	userRepo := &mysql.UserRepository{DB: a.db}
	sessions := &rrepo.SessionRepository{RDB: a.rdb}

	uploads := service.NewUploadService(uploader, pkg.CompressOptions{
		MaxDimension: cfg.Images.MaxDimension,
		TargetBytes:  cfg.Images.TargetBytes,
		Quality:      cfg.Images.JPEGQuality,
	}, log)
	emails := service.NewEmailService(mailer, &rrepo.EmailRepository{RDB: a.rdb}, log)
	users := service.NewUserService(userRepo, sessions, emails, uploads, tokens, log)
	discoveries := service.NewDiscoveryService(&mysql.DiscoveryRepository{DB: a.db}, log)
	seals := service.NewSealService(&mysql.SealRepository{DB: a.db}, log)
	moderation := service.NewModerationService(&mysql.ModerationRepository{DB: a.db}, log)
	submissions := service.NewSubmissionService(&mysql.SubmissionRepository{DB: a.db}, log)
	events := service.NewEventService(&mysql.EventRepository{DB: a.db}, userRepo, log)
	posts := service.NewPostService(&mysql.PostRepository{DB: a.db}, userRepo, log)
	tags := service.NewTagService(suggester, log)

	a.relayer = service.NewOutboxRelayer(&mysql.OutboxRepository{DB: a.db}, sender, cfg.Kafka.BatchSize, cfg.Kafka.RelayInterval, log)

	maxUpload := cfg.HTTP.MaxUploadBytes
	a.engine = router.InitRouter(router.Deps{
		Handlers: router.Handlers{
			User:       handler.NewUserHandler(users),
			Email:      handler.NewEmailHandler(emails),
			Profile:    handler.NewProfileHandler(users, maxUpload),
			Discovery:  handler.NewDiscoveryHandler(discoveries, seals),
			Moderation: handler.NewModerationHandler(moderation),
			Submission: handler.NewSubmissionHandler(submissions),
			Event:      handler.NewEventHandler(events),
			Post:       handler.NewPostHandler(posts, tags),
			Upload:     handler.NewUploadHandler(uploads, maxUpload),
		},
		Auth:    middleware.NewAuthenticator(tokens, sessions, users, log),
		Limiter: middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Log:     log,
	})
	return a, nil
}

func newUploader(ctx context.Context, cfg *config.Config) (storage.Uploader, error) {
	switch cfg.Storage.Driver {
	case "s3":
		u, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:         cfg.Storage.Bucket,
			Region:         cfg.Storage.Region,
			Endpoint:       cfg.Storage.Endpoint,
			AccessKeyID:    cfg.Storage.AccessKeyID,
			SecretKey:      cfg.Storage.SecretKey,
			PublicBaseURL:  cfg.Storage.PublicBaseURL,
			ForcePathStyle: cfg.Storage.ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return u, nil
	case "noop":
		return storage.NoopUploader{}, nil
	}
	return nil, errors.New("unknown storage driver " + cfg.Storage.Driver)
}
