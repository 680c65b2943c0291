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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/fantasy-corps/internal/config"
	"github.com/iliyamo/fantasy-corps/internal/database"
	"github.com/iliyamo/fantasy-corps/internal/handler"
	"github.com/iliyamo/fantasy-corps/internal/lock"
	"github.com/iliyamo/fantasy-corps/internal/logging"
	"github.com/iliyamo/fantasy-corps/internal/matchup"
	"github.com/iliyamo/fantasy-corps/internal/metrics"
	"github.com/iliyamo/fantasy-corps/internal/middleware"
	"github.com/iliyamo/fantasy-corps/internal/queue"
	"github.com/iliyamo/fantasy-corps/internal/repository"
	"github.com/iliyamo/fantasy-corps/internal/roster"
	"github.com/iliyamo/fantasy-corps/internal/router"
	"github.com/iliyamo/fantasy-corps/internal/schedule"
	"github.com/iliyamo/fantasy-corps/internal/scoring"
	"github.com/iliyamo/fantasy-corps/internal/season"
	"github.com/iliyamo/fantasy-corps/internal/service"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "fantasy-corps", Version: version})
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		Driver: cfg.DB.Driver,
		User:   cfg.DB.User,
		Pass:   cfg.DB.Pass,
		Host:   cfg.DB.Host,
		Port:   cfg.DB.Port,
		Name:   cfg.DB.Name,
		Path:   cfg.DB.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if cfg.DB.Migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	st := repository.NewSQLStore(db)

	rdb := config.NewRedisClient(cfg.Redis)
	var locker lock.Locker = lock.NewLocal()
	if rdb != nil {
		defer rdb.Close()
		locker = lock.NewRedis(rdb, cfg.Lock.Prefix, cfg.Lock.TTL)
	} else {
		log.Warn().Msg("redis unavailable: using in-process season locks, local rate limits, no result cache")
	}

	var pub service.Publisher = service.NopPublisher{}
	if cfg.AMQP.Enabled {
		pub = service.NewAMQPPublisher(cfg.AMQP.URL)
	}

	var rec *metrics.Recorder
	if cfg.App.MetricsEnabled {
		rec = metrics.NewRecorder()
	}

	seed := cfg.Scoring.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	engine := scoring.NewEngine(scoring.NewRNG(seed), cfg.Scoring.Workers)
	seasons := season.NewService(st, engine,
		season.WithLocker(locker),
		season.WithPublisher(pub),
		season.WithMetrics(rec),
		season.WithLogger(log),
	)
	rosters := roster.NewService(st, roster.WithLogger(log), roster.WithMetrics(rec))
	matchups := matchup.NewService(st)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	limiter := middleware.NewTokenBucket(cfg.RateLimit, rdb, log)
	router.RegisterRoutes(e, db, rec)
	router.RegisterPublic(e, handler.NewPublicHandler(seasons, matchups), cfg.Cache, rdb)
	router.RegisterAdmin(e, handler.NewAdminHandler(seasons), cfg.JWT.Secret, limiter)
	router.RegisterParticipant(e, handler.NewParticipantHandler(rosters), cfg.JWT.Secret, limiter)

	sched := schedule.New(schedule.Config{
		Spec:     cfg.Schedule.Spec,
		Location: cfg.Schedule.Location(),
		Timeout:  cfg.Schedule.Timeout,
	}, st, seasons, log)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.App.Port
		log.Info().Str("addr", addr).Str("env", cfg.App.Env).Str("db", cfg.DB.Driver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.AMQP.Enabled && cfg.AMQP.Consume {
		g.Go(func() error {
			c := &queue.ResultsConsumer{URL: cfg.AMQP.URL, LogPath: cfg.AMQP.ResultsLog, Log: logging.Component(log, "results-consumer")}
			if err := c.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return e.Shutdown(sctx)
	})
	return g.Wait()
}
