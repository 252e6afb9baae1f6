package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-relay/ai"
	"chat-relay/annotate"
	"chat-relay/auth"
	"chat-relay/infrastructure/httpapi"
	"chat-relay/infrastructure/ws"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before the process
// exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		log.Info("Closing bluge writer...")
		_ = blugeWriter.Close()
	}()

	conversationRepository := repositories.NewConversationRepository(db, log, config.LimitMessages)
	userRepository := repositories.NewUserRepository(db)
	searchIndex := repositories.NewSearchIndex(blugeWriter, log)

	// 3. Pipeline collaborators
	replacement := '*'
	if config.ModerationCharReplacement != "" {
		replacement = []rune(config.ModerationCharReplacement)[0]
	}
	filter, err := moderation.NewFilter(config.ModerationWords, replacement, log)
	if err != nil {
		return fmt.Errorf("moderation filter: %w", err)
	}
	annotator := annotate.NewAnnotator(log)
	provider := ai.NewOpenAIClient(config.ProviderBaseURL, config.ProviderAPIKey,
		config.ProviderModel, config.ProviderTimeout)
	responder := ai.NewResponseGenerator(provider, log)

	registry := runtime.NewRegistry()
	stats := observability.NewPipelineStats()
	pipeline := runtime.NewPipeline(log, conversationRepository, annotator, responder,
		filter, registry, stats, config.SinkTimeout)
	presence := runtime.NewPresenceTracker(log, registry, stats, config.SinkTimeout)

	// 4. Background workers
	indexer := workers.NewIndexerWorker(log, searchIndex, config.IndexBufferSize)
	pipeline.AddSinks(indexer.Sink())
	telemetry := workers.NewTelemetryWorker(log, stats, config.MetricInterval)
	sup := workers.NewSupervisor(log, config.RestartInterval)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisorDone := make(chan struct{})
	go func() {
		sup.Add(indexer, telemetry).Run(ctx)
		close(supervisorDone)
	}()

	// 6. Services & Transport
	tokens := auth.NewTokenManager(config.JwtSecret, "chat-relay", config.TokenDuration)
	authService := services.NewAuthService(userRepository, tokens)
	chatService := services.NewChatService(conversationRepository, searchIndex,
		pipeline, presence, registry)

	wsServer := ws.NewServer(ctx, log, chatService, authService, config.SessionBufferSize)
	api := httpapi.NewAPI(log, chatService, authService, wsServer, config.SearchLimit)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: api.Router()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", "error", err)
	}
	sup.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return nil
}
