package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/advisor/internal/ai"
	"github.com/xxxsen/advisor/internal/chatlog"
	"github.com/xxxsen/advisor/internal/config"
	"github.com/xxxsen/advisor/internal/db"
	"github.com/xxxsen/advisor/internal/filestore"
	"github.com/xxxsen/advisor/internal/handler"
	"github.com/xxxsen/advisor/internal/metrics"
	"github.com/xxxsen/advisor/internal/middleware"
	"github.com/xxxsen/advisor/internal/repo"
	"github.com/xxxsen/advisor/internal/service"
	"github.com/xxxsen/advisor/internal/session"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "advisor",
		Short: "academic advising assistant server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run advisor server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			return runServer(cfg, conn)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			return conn.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func bootstrap(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(context.Background(), conn); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("session_store", cfg.Session.Type),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	studentRepo := repo.NewStudentRepo(conn)
	adminRepo := repo.NewAdminRepo(conn)
	courseRepo := repo.NewCourseRepo(conn)
	planRepo := repo.NewPlanRepo(conn)
	bulletinRepo := repo.NewBulletinRepo(conn)
	docRepo := repo.NewSupportingDocRepo(conn)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	sessions, err := session.New(cfg.Session)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	logs, err := chatlog.NewFileStore(cfg.Chat.LogDir)
	if err != nil {
		return fmt.Errorf("init chat log store: %w", err)
	}
	completion, err := ai.NewCompletionFromConfig(cfg.AI)
	if err != nil {
		return err
	}
	m := metrics.New()

	snapshots := service.NewStudentContextService(studentRepo)
	studentService := service.NewStudentService(studentRepo, snapshots)
	advisingService := service.NewAdvisingService(studentRepo, courseRepo, planRepo)
	authService := service.NewAuthService(studentRepo, adminRepo, sessions, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	bulletinService := service.NewBulletinService(bulletinRepo, store, m, cfg.Chat)
	docService := service.NewSupportingDocService(docRepo, store, cfg.Chat)
	chatService := service.NewChatService(snapshots, logs, completion, bulletinRepo, store, docService, m, cfg.Chat)

	deps := handler.RouterDeps{
		Auth:         handler.NewAuthHandler(authService),
		Chat:         handler.NewChatHandler(chatService, sessions),
		Students:     handler.NewStudentHandler(studentService, advisingService),
		Admin:        handler.NewAdminHandler(bulletinService, docService, studentService),
		Files:        handler.NewFileHandler(store),
		JWTSecret:    []byte(cfg.JWTSecret),
		ChatInterval: time.Duration(cfg.Chat.RateLimitSeconds) * time.Second,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logutil.GetLogger(context.Background()).Error("metrics server error", zap.Error(err))
			}
		}()
		logutil.GetLogger(context.Background()).Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
	}

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	return nil
}
