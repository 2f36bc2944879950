package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/praxisapp/praxis-backend/internal/ai"
	"github.com/praxisapp/praxis-backend/internal/ai/gemini"
	"github.com/praxisapp/praxis-backend/internal/logger"
	"github.com/praxisapp/praxis-backend/internal/pipeline"
	"github.com/praxisapp/praxis-backend/internal/registry"
	"github.com/praxisapp/praxis-backend/internal/secrets"
	"github.com/praxisapp/praxis-backend/internal/server"
)

const (
	defaultListen          = ":8000"
	shutdownTimeout        = 10 * time.Second
	geminiAPIKeyEnv        = "GEMINI_API_KEY"
	defaultMaxUploadSizeMB = 64
)

// The original frontend runs on localhost:3000 in development and Vercel in
// production.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"https://*.vercel.app",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the praxis HTTP API server",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", defaultListen, "address for the HTTP server to listen on")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

// serve is the main command for the backend.
func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Values from a .env file fill the environment before viper reads it.
	_ = godotenv.Load()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting praxis", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	listen := config.Listen
	if listen == "" {
		listen = viper.GetString("listen")
	}
	if listen == "" {
		listen = defaultListen
	}

	reg := registry.New()

	analyzer, matcher, geminiModel := buildProviders(ctx, config, logger)
	geminiConfigured := geminiModel != ""

	pipe := pipeline.New(analyzer, matcher, reg, logger)

	srv := server.New(server.Config{
		Listen:           listen,
		Debug:            viper.GetBool("debug"),
		CORSOrigins:      corsOrigins(config),
		MaxUploadMB:      maxUploadMB(config),
		GeminiConfigured: geminiConfigured,
		GeminiModel:      geminiModel,
	}, reg, pipe, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
		}
	}
}

// buildProviders selects the real Gemini implementations when a credential is
// available and the mock pair otherwise. The returned model name is empty in
// mock mode.
func buildProviders(ctx context.Context, config *Config, log *zap.Logger) (ai.Analyzer, ai.JobMatcher, string) {
	geminiCfg := config.Gemini
	if geminiCfg == nil {
		geminiCfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: geminiCfg.APIKey,
		File:  geminiCfg.APIKeyFile,
		Env:   geminiAPIKeyEnv,
	})
	if err != nil {
		log.Warn("no gemini credential configured, serving mock data",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or the gemini.api-key-file config key"),
		)
		return ai.NewMockAnalyzer(), ai.NewMockMatcher(), ""
	}

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:          apiKey,
		Model:           geminiCfg.Model,
		PollInterval:    time.Duration(geminiCfg.PollIntervalSec) * time.Second,
		MaxPollAttempts: geminiCfg.MaxPollAttempts,
		MaxLogLength:    geminiCfg.MaxLogLength,
	}, logger.WithCommonFields(log, "gemini", geminiCfg.Model))
	if err != nil {
		log.Warn("creating gemini client failed, serving mock data", zap.Error(err))
		return ai.NewMockAnalyzer(), ai.NewMockMatcher(), ""
	}

	providerLogger := logger.WithCommonFields(log, "gemini", client.Model())

	analyzer := gemini.NewAnalyzer(client, providerLogger, geminiCfg.MaxLogLength)
	matcher := gemini.NewMatcher(client, providerLogger, geminiCfg.MaxLogLength)

	return analyzer, matcher, client.Model()
}

func corsOrigins(config *Config) []string {
	if config.CORS != nil && len(config.CORS.Origins) > 0 {
		return config.CORS.Origins
	}
	return defaultCORSOrigins
}

func maxUploadMB(config *Config) int64 {
	if config.Upload != nil && config.Upload.MaxSizeMB > 0 {
		return config.Upload.MaxSizeMB
	}
	return defaultMaxUploadSizeMB
}
