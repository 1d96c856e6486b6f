package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cwrk-planet/meeting-service/config"
	"github.com/cwrk-planet/meeting-service/internal/directory"
	"github.com/cwrk-planet/meeting-service/internal/domain"
	"github.com/cwrk-planet/meeting-service/internal/repository"
	"github.com/cwrk-planet/meeting-service/internal/repository/badgerstore"
	"github.com/cwrk-planet/meeting-service/internal/repository/memory"
	"github.com/cwrk-planet/meeting-service/internal/repository/postgres"
	"github.com/cwrk-planet/meeting-service/internal/service"
	"github.com/cwrk-planet/meeting-service/internal/session"
	grpcx "github.com/cwrk-planet/meeting-service/internal/transport/grpc"
	httpx "github.com/cwrk-planet/meeting-service/internal/transport/http"
	"github.com/cwrk-planet/meeting-service/internal/transport/ws"
	"github.com/cwrk-planet/meeting-service/pkg/logger"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/sync/errgroup"
)

func main() {
	// .env is optional outside dev
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.ParseEnv(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting meeting-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version, "store", cfg.Store.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- tracing ---
	if cfg.Tracing.Enabled {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// --- store ---
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open store", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	// --- services ---
	gh := directory.New(directory.Options{
		APIURL:            cfg.GitHub.APIURL,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Burst:             cfg.GitHub.Burst,
	})
	hub := ws.NewHub()
	policy := domain.Policy{
		AllowSelfYield:      *cfg.Meeting.AllowSelfYield,
		AllowAgendaReorder:  *cfg.Meeting.AllowAgendaReorder,
		HideQueueIdentities: cfg.Meeting.HideQueueIdentities,
	}
	coord := service.NewCoordinator(store, policy,
		service.WithPublisher(hub),
		service.WithPersistTimeout(cfg.Meeting.PersistTimeout),
	)
	meetingSvc := service.NewMeetingService(store, gh, coord)

	sessions, err := session.NewManager(session.Config{
		Secret: []byte(cfg.Session.Secret),
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	})
	if err != nil {
		slog.Error("session manager", "err", err)
		os.Exit(1)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
		Endpoint:     github.Endpoint,
		RedirectURL:  strings.TrimRight(cfg.HTTP.PublicURL, "/") + "/auth/github/callback",
		Scopes:       []string{"read:user"},
	}

	// --- HTTP ---
	handler := httpx.NewHandler(meetingSvc, sessions, oauthCfg, gh, cfg.Session.Secure)
	router := httpx.NewRouter(handler, sessions, ws.NewServer(hub, meetingSvc), store, httpx.RouterOptions{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// --- gRPC ---
	grpcServer := grpcx.NewServer()
	health := grpcx.NewHealth(store, 10*time.Second)
	grpcx.Register(grpcServer, health)

	// --- run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.GRPC.Addr != "" {
		g.Go(func() error {
			lis, err := net.Listen("tcp", cfg.GRPC.Addr)
			if err != nil {
				return err
			}
			slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
			return grpcServer.Serve(lis)
		})
		g.Go(func() error { return health.Run(gctx) })
	}

	// --- graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		grpcServer.GracefulStop()
		return httpSrv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
	}
	slog.Info("stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.MeetingStore, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxConns:        cfg.Postgres.MaxConns,
			MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
			ApplicationName: cfg.Logging.Service,
		})
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewMeetingRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	case "badger":
		s, err := badgerstore.Open(cfg.Badger.Path, slog.Default())
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Error("close badger", "err", err)
			}
		}, nil
	default:
		return memory.New(), func() {}, nil
	}
}
