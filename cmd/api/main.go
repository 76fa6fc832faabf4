package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/solacelabs/solace-backend/internal/config"
	"github.com/solacelabs/solace-backend/internal/handler"
	aiservice "github.com/solacelabs/solace-backend/internal/service/ai"
	authservice "github.com/solacelabs/solace-backend/internal/service/auth"
	insightsservice "github.com/solacelabs/solace-backend/internal/service/insights"
	"github.com/solacelabs/solace-backend/internal/service/title"
	"github.com/solacelabs/solace-backend/internal/service/turn"
	"github.com/solacelabs/solace-backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	users := store.NewUsers(db)
	conversations := store.NewConversations(db)
	preferences := store.NewPreferences(db)
	moods := store.NewMoods(db)
	emotions := store.NewEmotions(db)

	if !cfg.AI.Enabled() {
		log.Fatal("Ark credentials are required: set ARK_MODEL plus ARK_API_KEY or an ARK_ACCESS_KEY/ARK_SECRET_KEY pair")
	}
	aiService, err := aiservice.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize AI service: %v", err)
	}
	log.Println("AI service initialized successfully")

	titles := title.NewGenerator(aiService, conversations, cfg.AI.TitleWorkers)
	orchestrator := turn.New(conversations, emotions, turn.NewProvider(aiService), titles, cfg.AI.MaxContextMessages)

	tokens := authservice.NewService(cfg.Auth.SecretKey, cfg.Auth.TokenTTLMinutes)
	insights := insightsservice.NewService(moods, emotions, conversations)

	router := handler.NewRouter(handler.Deps{
		Config:        cfg,
		Users:         users,
		Conversations: conversations,
		Preferences:   preferences,
		Moods:         moods,
		Tokens:        tokens,
		Insights:      insights,
		Runner:        orchestrator,
	})

	startServer(ctx, cfg.Server, router)

	// Let queued title jobs finish before exiting.
	titles.Wait()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Solace backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
