// Command companiond runs the companion voice-session service: a
// websocket endpoint for live conversations, sqlite persistence, vector
// memory, and the scheduled call reminder loop.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/config"
	"github.com/tripot-labs/companion-engine/llm"
	"github.com/tripot-labs/companion-engine/memory"
	"github.com/tripot-labs/companion-engine/memory/embedder/openai"
	"github.com/tripot-labs/companion-engine/memory/store/chromem"
	"github.com/tripot-labs/companion-engine/quiz"
	"github.com/tripot-labs/companion-engine/reply"
	"github.com/tripot-labs/companion-engine/schedule"
	"github.com/tripot-labs/companion-engine/server"
	"github.com/tripot-labs/companion-engine/session"
	"github.com/tripot-labs/companion-engine/speech"
	"github.com/tripot-labs/companion-engine/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("service failed", zap.Error(err))
	}
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.DB.Path, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	pool, err := db.LoadQuizPool(ctx)
	if err != nil {
		return err
	}

	index, err := chromem.NewPersistent(cfg.Memory.Path, logger)
	if err != nil {
		return err
	}
	embedder := openai.New(openai.Config{APIKey: cfg.OpenAI.APIKey, BaseURL: cfg.OpenAI.BaseURL})
	completer := llm.NewCompleter(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	})
	memories, err := memory.NewManager(index, embedder, completer, logger)
	if err != nil {
		return err
	}

	// Missing prompt files degrade to built-in Korean defaults.
	quizPrompts, err := quiz.LoadPrompts(filepath.Join(cfg.PromptsDir, "quiz_prompts.json"))
	if err != nil {
		logger.Warn("quiz prompts not loaded, using defaults", zap.Error(err))
	}
	replyPrompts, err := reply.LoadPromptConfig(filepath.Join(cfg.PromptsDir, "talk_prompts.json"))
	if err != nil {
		logger.Warn("chat prompts not loaded, using defaults", zap.Error(err))
	}

	replier := reply.NewGenerator(completer, memories, replyPrompts, logger)
	transcriber := speech.NewWhisperTranscriber(speech.WhisperConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
	})

	registry := session.NewRegistry(func() *quiz.Engine {
		return quiz.NewEngine(pool, quizPrompts, quiz.NewLLMScorer(completer, logger), logger)
	}, logger)
	orchestrator := session.NewOrchestrator(registry, transcriber, replier, memories, db, logger)

	hub := server.NewHub(logger)
	go schedule.New(db, hub, logger).Run(ctx)

	httpSrv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.New(hub, orchestrator, logger).Routes(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("companiond listening",
		zap.String("addr", cfg.Server.ListenAddr),
		zap.Int("quiz_pool", len(pool)))
	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
