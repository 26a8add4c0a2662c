package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hayat-support-backend/internal/config"
	"hayat-support-backend/internal/dispatch"
	"hayat-support-backend/internal/domain"
	"hayat-support-backend/internal/logging"
	"hayat-support-backend/internal/provider"
	"hayat-support-backend/internal/server"
	"hayat-support-backend/internal/store"
)

const shutdownTimeout = 10 * time.Second

var (
	verbose bool

	cfg    config.Config
	logger *zap.Logger

	askMode string
	askName string
	askType string
	askLang string
)

var rootCmd = &cobra.Command{
	Use:   "hayat-server",
	Short: "Hayat bilingual support companion backend",
	Long: `Serves the Hayat conversational support engine over HTTP.

Replies come from the configured remote model when it answers in time and
from the local bilingual template engine otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level, cfg.LogDevelopment)
		if err != nil {
			return err
		}
		for _, w := range cfg.Warnings() {
			logger.Warn(w)
		}
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Run a single turn against an in-memory store and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	askCmd.Flags().StringVar(&askMode, "mode", string(domain.ModeNormal), "assistant mode (normal|counselor)")
	askCmd.Flags().StringVar(&askName, "name", "", "user name")
	askCmd.Flags().StringVar(&askType, "type", string(domain.UserWellness), "user type (fighter|survivor|wellness)")
	askCmd.Flags().StringVar(&askLang, "lang", string(domain.LangEnglish), "preferred language (en|ar)")

	rootCmd.AddCommand(serveCmd, askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := server.NewServer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer s.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("hayat server listening", zap.String("addr", srv.Addr), zap.String("provider", cfg.Provider), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, err := provider.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	st := server.NewStore(store.NewMemoryPersistence(), logger)
	key := domain.Key{UserID: "cli", Mode: domain.ParseMode(askMode)}
	profile := dispatch.Profile{
		UserName: askName,
		UserType: domain.ParseUserType(askType),
		Language: domain.ParseLanguage(askLang),
	}
	if _, err := st.EnsureSeeded(ctx, key, domain.ChatbotContext{
		UserName: profile.UserName,
		UserType: profile.UserType,
		Language: profile.Language,
		Mode:     key.Mode,
	}); err != nil {
		return err
	}

	coord := dispatch.New(st, p,
		dispatch.WithHistoryWindow(cfg.HistoryWindow),
		dispatch.WithRemoteTimeout(cfg.RemoteTimeout),
		dispatch.WithLogger(logger.Named("dispatch")),
	)
	res, err := coord.HandleTurn(ctx, dispatch.TurnInput{
		Key:     key,
		Message: strings.Join(args, " "),
		Profile: profile,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Notice != "" {
		fmt.Fprintf(out, "(%s)\n\n", res.Notice)
	}
	fmt.Fprintln(out, res.Text)
	return nil
}
