package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/btcrunway/btcrunway/internal/config"
	"github.com/btcrunway/btcrunway/internal/database"
	"github.com/btcrunway/btcrunway/internal/metrics"
	"github.com/btcrunway/btcrunway/internal/rest"
	"github.com/btcrunway/btcrunway/internal/scheduler"
	"github.com/btcrunway/btcrunway/pkg/price_history"
	"github.com/btcrunway/btcrunway/pkg/quote"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

// Application wires configuration, storage, router, scheduler, and server lifecycle.
type Application struct {
	cfg       config.Application
	router    *mux.Router
	srv       *http.Server
	deps      *Dependencies
	scheduler *scheduler.Scheduler
	closeDB   func()
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	repo, closeDB, err := openPriceHistory(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	deps := BuildDependencies(repo, quote.NewClient(cfg.CoinMarketCap))

	r := newRouter(deps, cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sched, err := newScheduler(cfg.Scheduler, deps)
	if err != nil {
		closeDB()
		return nil, err
	}

	return &Application{cfg: cfg, router: r, srv: srv, deps: deps, scheduler: sched, closeDB: closeDB}, nil
}

func newRouter(deps *Dependencies, cfg config.Application) *mux.Router {
	r := mux.NewRouter()
	SetupMiddleware(r, cfg)
	RegisterRoutes(r, deps, cfg)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler(cfg.Frontend.Dir, "index.html")
		// /api/ is left to the router so unknown methods still get a 405
		r.PathPrefix("/").MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
			return !strings.HasPrefix(req.URL.Path, "/api/")
		}).Handler(frontend)
	}
	return r
}

func openPriceHistory(ctx context.Context, cfg config.Application) (price_history.Repository, func(), error) {
	switch cfg.PriceHistory.Store {
	case config.PriceHistoryStoreFile:
		log.Infof("Using price history file %s", cfg.PriceHistory.File)
		return price_history.NewFileRepository(cfg.PriceHistory.File), func() {}, nil
	case config.PriceHistoryStorePostgres:
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, nil, err
		}
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using price history table in %s/%s", cfg.Database.Host, cfg.Database.Name)
		return price_history.NewRepository(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown price history store %q", cfg.PriceHistory.Store)
	}
}

func newScheduler(cfg config.Scheduler, deps *Dependencies) (*scheduler.Scheduler, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	s := scheduler.New(cfg.Timeout)
	err := s.Register("price-history", cfg.Spec, func(ctx context.Context) error {
		_, err := deps.PriceHistoryService.RecordCurrentPrice(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Run starts the scheduler and the HTTP server, and blocks until ctx is done or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.closeDB()

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		a.stopScheduler(context.Background())
		return err
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.srv.Shutdown(shutdownCtx)
	a.stopScheduler(shutdownCtx)
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

func (a *Application) stopScheduler(ctx context.Context) {
	if a.scheduler == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	a.scheduler.Stop(ctx)
}
