package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"profile-service/internal/addresses"
	"profile-service/internal/confirmation"
	"profile-service/internal/geo"
	"profile-service/internal/invariants"
	"profile-service/internal/notify"
	"profile-service/internal/profiles"
	"profile-service/internal/respond"
	"profile-service/internal/storage"
	"profile-service/internal/storage/memory"
	"profile-service/internal/storage/postgres"
	"profile-service/internal/vehicles"
	"profile-service/migrations"
	"profile-service/pkg/allowlist"
	"profile-service/pkg/config"
	"profile-service/pkg/db"
	"profile-service/pkg/jwt"
	"profile-service/pkg/kafka"
	"profile-service/pkg/logger"
	"profile-service/pkg/metrics"
	"profile-service/pkg/objectstore"
	rredis "profile-service/pkg/redis"
	"profile-service/pkg/validation"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	log := logger.New("profile-service", cfg.Env)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("service stopped", logger.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.ILogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Token verifier ──
	key, err := jwt.LoadKey(cfg.Auth.Algorithms, cfg.Auth.SigningKey, cfg.Auth.PublicKeyPath)
	if err != nil {
		return err
	}
	verifier, err := jwt.NewVerifier(key, cfg.Auth.Algorithms, jwt.WithLeeway(cfg.Auth.Leeway))
	if err != nil {
		return err
	}

	// ── 2. Vehicle allow-lists ──
	allow, err := allowlist.Load(cfg.Allowlist.ModelsPath, cfg.Allowlist.ColorsPath)
	if err != nil {
		return err
	}
	log.Info("allow-lists loaded",
		logger.Int("models", len(allow.Models())), logger.Int("colors", len(allow.Colors())))

	// ── 3. Storage ──
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	// ── 4. Optional integrations ──
	m := metrics.New()
	var (
		addrOpts    = []addresses.Option{addresses.WithDowngradeObserver(m.IncDowngrade)}
		profileOpts []profiles.Option
		kafkaClient *kafka.Client
		avatars     *objectstore.Store
	)

	if cfg.Redis.Addr != "" {
		cache, err := rredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, log)
		if err != nil {
			return err
		}
		defer cache.Close()
		addrOpts = append(addrOpts, addresses.WithCache(cache))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient = kafka.NewClient(cfg.Kafka.Brokers, log)
		defer kafkaClient.Close()
		if err := kafkaClient.EnsureTopics(ctx,
			kafka.TopicConfirmationRequired,
			kafka.TopicConfirmationDecided,
		); err != nil {
			return err
		}
		addrOpts = append(addrOpts, addresses.WithPublisher(kafkaClient))
		profileOpts = append(profileOpts, profiles.WithPublisher(kafkaClient))
	}

	if cfg.Minio.Endpoint != "" {
		avatars, err = objectstore.New(ctx, objectstore.Config{
			Endpoint:     cfg.Minio.Endpoint,
			AccessKey:    cfg.Minio.AccessKey,
			SecretKey:    cfg.Minio.SecretKey,
			Bucket:       cfg.Minio.Bucket,
			CreateBucket: cfg.Minio.CreateBucket,
			MaxSizeBytes: cfg.Minio.MaxSizeBytes,
		})
		if err != nil {
			return err
		}
		profileOpts = append(profileOpts, profiles.WithAvatarChecker(avatars))
	}

	// ── 5. Services ──
	engine := invariants.NewEngine(allow)
	profileSvc := profiles.NewService(store, engine, log, profileOpts...)
	addressSvc := addresses.NewService(store, log, addrOpts...)
	vehicleSvc := vehicles.NewService(store, engine, allow)
	hub := notify.NewHub(log)

	// ── 6. HTTP router ──
	rs := respond.New(log, m.IncValidationFailure)
	vldt := validation.New()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(jwt.Authenticate(verifier, func(reason jwt.Reason) { m.IncAuthFailure(string(reason)) }))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "profile-service"})
	})
	r.Handle("/metrics", m.Handler())

	addressHandler := addresses.NewHandler(addressSvc, rs, vldt)
	vehicleHandler := vehicles.NewHandler(vehicleSvc, rs, vldt)

	r.Mount("/geo", geo.NewHandler(store.Geo(), rs).Routes())
	r.Get("/vehicles/options", vehicleHandler.Options)
	r.Mount("/profiles", profiles.NewHandler(profileSvc, rs, vldt).Routes())
	r.Mount("/addresses", addressHandler.Routes())
	r.Mount("/drivers/address", addressHandler.DriverRoutes())
	r.Mount("/drivers/car", vehicleHandler.Routes())
	r.Mount("/ws", hub.Routes())
	if avatars != nil {
		r.With(jwt.RequireAuth).Post("/avatars", profiles.NewAvatarHandler(avatars, rs, log).Upload)
	}

	// ── 7. Run ──
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("profile-service listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if kafkaClient != nil {
		consumer := confirmation.NewConsumer(kafkaClient, cfg.Kafka.GroupID, profileSvc, hub, m.IncDecision, log)
		g.Go(func() error { return consumer.Run(gctx) })
	}

	// ── 8. Graceful shutdown ──
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, log logger.ILogger) (storage.Store, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warning("using in-memory storage; data is lost on exit")
		st := memory.New()
		if err := st.Seed(memory.DefaultGeo()); err != nil {
			return nil, err
		}
		return st, nil
	}

	database, err := db.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, log)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(migrations.FS); err != nil {
		database.Close()
		return nil, err
	}
	return postgres.New(database.Pool), nil
}
