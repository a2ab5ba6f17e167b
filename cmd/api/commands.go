package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"confrarias/internal/repository/mysql"
	"confrarias/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the outbox relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.App.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			go a.relayer.Run(ctx)

			srv := &http.Server{
				Addr:         cfg.HTTP.Addr,
				Handler:      a.engine,
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			}
			errCh := make(chan error, 1)
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server failed: %w", err)
				}
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer log.Sync()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			if err = mysql.AutoMigrate(db); err != nil {
				return err
			}
			log.Info("migration finished")
			return nil
		},
	}
}

func newProvisionCmd(configDir *string) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "provision <submission-id>",
		Short: "Create the confraria account for an approved submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer log.Sync()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			svc := service.NewProvisionService(&mysql.SubmissionRepository{DB: db}, &mysql.UserRepository{DB: db}, log)
			user, password, err := svc.Provision(cmd.Context(), args[0], username)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user id:            %s\nusername:           %s\ntemporary password: %s\n", user.ID, user.Username, password)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name for the new account")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newCheckSealsCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-seals",
		Short: "Report discoveries whose seal count disagrees with their seal givers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer log.Sync()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			ids, err := service.NewSealService(&mysql.SealRepository{DB: db}, log).Mismatches(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			if len(ids) > 0 {
				return fmt.Errorf("%d discoveries with inconsistent seals", len(ids))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seal ledger consistent")
			return nil
		},
	}
}
