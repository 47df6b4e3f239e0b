package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/spf13/cobra"

	"github.com/BorisDmv/techscribe-api/internal/ai"
	"github.com/BorisDmv/techscribe-api/internal/auth"
	"github.com/BorisDmv/techscribe-api/internal/config"
	"github.com/BorisDmv/techscribe-api/internal/db"
	"github.com/BorisDmv/techscribe-api/internal/handlers"
	"github.com/BorisDmv/techscribe-api/internal/mail"
	"github.com/BorisDmv/techscribe-api/internal/metrics"
	"github.com/BorisDmv/techscribe-api/internal/services"
	"github.com/BorisDmv/techscribe-api/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		}); err != nil {
			return fmt.Errorf("sentry init: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if pg, ok := st.(*db.Store); ok {
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	tokens, err := auth.NewTokenManager([]byte(cfg.JWTSecret), []byte(cfg.JWTRefreshSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return err
	}

	uploader, err := storage.NewLocal(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		return err
	}

	var mailer mail.Sender = mail.LogSender{}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	if cfg.Gemini.APIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, AI generation is disabled")
	}
	drafts := ai.NewClient(ai.Config{
		APIKey:       cfg.Gemini.APIKey,
		BaseURL:      cfg.Gemini.BaseURL,
		Model:        cfg.Gemini.Model,
		ImageBaseURL: cfg.Gemini.ImageBaseURL,
		Timeout:      cfg.Gemini.Timeout,
	})

	m := metrics.New()
	router := handlers.NewRouter(handlers.Deps{
		DB:             st,
		Tokens:         tokens,
		Users:          services.NewUserService(st, tokens, mailer, uploader, m),
		AuthorRequests: services.NewAuthorRequestService(st, uploader, m, cfg.AllowResubmitAuthor),
		Posts:          services.NewPostService(st, m),
		Comments:       services.NewCommentService(st, m),
		AI:             services.NewAIService(drafts, m),
		Metrics:        m,
		AllowedOrigins: cfg.CorsAllowedOrigins,
		UploadDir:      uploader.Root(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if cfg.Gemini.Timeout > srv.WriteTimeout {
		srv.WriteTimeout = cfg.Gemini.Timeout + 5*time.Second
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}
