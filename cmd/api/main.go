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

	"github.com/arjunvk/mentorloop/internal/config"
	"github.com/arjunvk/mentorloop/internal/handler"
	resourceModel "github.com/arjunvk/mentorloop/internal/model/resource"
	doubtService "github.com/arjunvk/mentorloop/internal/service/doubt"
	"github.com/arjunvk/mentorloop/internal/service/matcher"
	"github.com/arjunvk/mentorloop/internal/service/provider"
	"github.com/arjunvk/mentorloop/internal/service/quota"
	sessionService "github.com/arjunvk/mentorloop/internal/service/session"
	"github.com/arjunvk/mentorloop/internal/store"
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

	repo, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer repo.Close()

	catalog := resourceModel.NewCatalog(resourceModel.Seed())

	factory := provider.NewFactory(cfg.AI.Credentials())
	answerChain := buildChain(ctx, factory, "answer", cfg.AI.AnswerProviders)
	matchChain := buildChain(ctx, factory, "matcher", cfg.AI.MatchProviders)

	tracker := quota.NewTracker(repo, cfg.Quota.DailyLimit)
	sessions := sessionService.NewManager(repo)
	resourceMatcher := matcher.New(catalog, matchChain)
	doubtSvc := doubtService.NewService(tracker, sessions, answerChain, resourceMatcher)

	router := handler.NewRouter(doubtSvc, sessions, catalog, repo)

	startServer(ctx, cfg.Server, router)
}

// buildChain assembles an ordered provider chain, skipping specs whose
// credentials are missing. An empty chain is still valid: the orchestrator's
// fallback synthesis covers it.
func buildChain(ctx context.Context, factory *provider.Factory, name string, specs []string) *provider.Chain {
	providers := make([]provider.Provider, 0, len(specs))
	for _, spec := range specs {
		p, err := factory.Create(ctx, spec)
		if err != nil {
			log.Printf("warning: skipping %s provider %q: %v", name, spec, err)
			continue
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		log.Printf("warning: %s chain has no usable providers, fallback answers only", name)
	} else {
		log.Printf("%s chain ready with %d provider(s)", name, len(providers))
	}
	return provider.NewChain(name, providers)
}

func openStore(cfg config.StoreConfig) (store.Repository, error) {
	if cfg.Driver == "memory" {
		log.Println("using in-memory store, state is lost on restart")
		return store.NewMemory(), nil
	}
	return store.NewSQLite(cfg.Path)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Mentorloop backend listening on %s", srv.Addr)
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
