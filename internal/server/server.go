package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/victornm/quli/internal/api"
	"github.com/victornm/quli/internal/event"
	"github.com/victornm/quli/internal/generator"
	"github.com/victornm/quli/internal/leaderboard"
	"github.com/victornm/quli/internal/quiz"
	"github.com/victornm/quli/internal/result"
	"github.com/victornm/quli/internal/store"
	"github.com/victornm/quli/internal/store/postgres"
	"github.com/victornm/quli/internal/store/sqlite"
	"github.com/victornm/quli/internal/telemetry"
)

const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"

	GeneratorProviderOpenAI = "openai"
	GeneratorProviderFile   = "file"
)

type RedisConfig struct {
	// Addrs empty disables the feature backed by this Redis.
	Addrs  []string
	Pass   string
	Prefix string
}

type Config struct {
	HTTP struct {
		Port         int32
		AllowOrigins []string
	}

	GRPC struct {
		Port int32
	}

	Redis struct {
		Leaderboard RedisConfig
		Pubsub      RedisConfig
	}

	Store struct {
		Driver string

		SQLite struct {
			Path string
		}

		Postgres struct {
			Addr string
			User string
			Pass string
			Name string
		}
	}

	Generator struct {
		Provider    string
		APIKey      string
		BaseURL     string
		Model       string
		Temperature float32
		// File is the question bank used by the file provider.
		File string
	}

	RateLimit struct {
		RPS   float64
		Burst int
	}

	Log telemetry.LogConfig
}

// DefaultConfig is the configuration used for keys missing from file and env.
func DefaultConfig() Config {
	var c Config
	c.HTTP.Port = 8080
	c.GRPC.Port = 8081
	c.Redis.Leaderboard.Prefix = "quli:leaderboard"
	c.Redis.Pubsub.Prefix = "quli:pubsub"
	c.Store.Driver = StoreDriverSQLite
	c.Store.SQLite.Path = "quli.db"
	c.Generator.Provider = GeneratorProviderOpenAI
	c.Generator.BaseURL = generator.DefaultBaseURL
	c.Generator.Model = generator.DefaultModel
	c.Generator.Temperature = 0.7
	c.RateLimit.RPS = 1
	c.RateLimit.Burst = 5
	c.Log.Level = "info"
	c.Log.Format = "json"
	c.Log.MaxSizeMB = 100
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28
	return c
}

type Server struct {
	c Config

	eb *event.Bus

	logCloser io.Closer

	infra struct {
		redis struct {
			leaderboard redis.UniversalClient
			pubsub      redis.UniversalClient
		}

		store store.Store
		gen   generator.Generator
	}

	service struct {
		quiz        *quiz.Service
		result      *result.Service
		leaderboard *leaderboard.Service
	}

	http *http.Server
	grpc *grpc.Server
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	closer, err := telemetry.SetupLogger(c.Log)
	if err != nil {
		return nil, fmt.Errorf("server: init logger: %w", err)
	}
	s.logCloser = closer

	s.eb = event.NewBus()

	if err := s.initInfra(); err != nil {
		s.closeInfra(context.Background())
		_ = s.logCloser.Close()
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	s.initService()
	s.initAPI()
	return s, nil
}

func (s *Server) initInfra() error {
	if err := s.initRedis(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := s.initStore(); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	if err := s.initGenerator(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}

	return nil
}

// closeInfra releases whatever initInfra has opened so far.
func (s *Server) closeInfra(ctx context.Context) {
	if s.infra.store != nil {
		if err := s.infra.store.Close(); err != nil {
			slog.ErrorContext(ctx, "server: close store failed", "error", err)
		}
		s.infra.store = nil
	}

	for _, r := range []*redis.UniversalClient{&s.infra.redis.leaderboard, &s.infra.redis.pubsub} {
		if *r != nil {
			_ = (*r).Close()
			*r = nil
		}
	}
}

func (s *Server) initRedis() error {
	connect := func(rc RedisConfig) (redis.UniversalClient, error) {
		if len(rc.Addrs) == 0 {
			return nil, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    rc.Addrs,
			Password: rc.Pass,
		})

		if err := telemetry.MonitorRedis(r); err != nil {
			return nil, err
		}

		if err := r.Ping(ctx).Err(); err != nil {
			return nil, err
		}

		return r, nil
	}

	var err error
	s.infra.redis.leaderboard, err = connect(s.c.Redis.Leaderboard)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}

	s.infra.redis.pubsub, err = connect(s.c.Redis.Pubsub)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}

	return nil
}

func (s *Server) initStore() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch s.c.Store.Driver {
	case StoreDriverSQLite, "":
		st, err := sqlite.Open(ctx, s.c.Store.SQLite.Path)
		if err != nil {
			return err
		}
		s.infra.store = st

	case StoreDriverPostgres:
		pc := s.c.Store.Postgres
		cc, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://%s:%s@%s/%s", pc.User, pc.Pass, pc.Addr, pc.Name))
		if err != nil {
			return err
		}

		db, err := pgxpool.NewWithConfig(ctx, cc)
		if err != nil {
			return err
		}

		if err := db.Ping(ctx); err != nil {
			db.Close()
			return err
		}

		st := postgres.New(db)
		if err := st.Migrate(ctx); err != nil {
			db.Close()
			return err
		}
		s.infra.store = st

	default:
		return fmt.Errorf("unknown driver %q", s.c.Store.Driver)
	}

	return nil
}

func (s *Server) initGenerator() error {
	gc := s.c.Generator

	switch gc.Provider {
	case GeneratorProviderOpenAI, "":
		g, err := generator.NewOpenAI(generator.Config{
			APIKey:      gc.APIKey,
			BaseURL:     gc.BaseURL,
			Model:       gc.Model,
			Temperature: gc.Temperature,
		})
		if err != nil {
			return err
		}
		s.infra.gen = g

	case GeneratorProviderFile:
		if gc.File == "" {
			return fmt.Errorf("file provider needs generator.file")
		}
		s.infra.gen = generator.NewFile(gc.File)

	default:
		return fmt.Errorf("unknown provider %q", gc.Provider)
	}

	return nil
}

func (s *Server) initService() {
	s.service.quiz = quiz.NewService(quiz.Config{
		Generator: s.infra.gen,
		Store:     s.infra.store,
		EventBus:  s.eb,
	})

	s.service.result = result.NewService(result.Config{
		Store:    s.infra.store,
		EventBus: s.eb,
	})

	if s.infra.redis.leaderboard != nil {
		s.service.leaderboard = leaderboard.NewService(leaderboard.Config{
			EventBus: s.eb,
			Redis:    s.infra.redis.leaderboard,
			Prefix:   s.c.Redis.Leaderboard.Prefix,
		})
	}
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery())

	s.grpc = grpc.NewServer(telemetry.GRPCServerInterceptor(slog.Default()))

	c := api.Config{
		HTTP:         e,
		GRPC:         s.grpc,
		EventBus:     s.eb,
		Quiz:         s.service.quiz,
		Result:       s.service.result,
		Leaderboard:  s.service.leaderboard,
		PubsubPrefix: s.c.Redis.Pubsub.Prefix,
		CORS:         api.CORSConfig{AllowOrigins: s.c.HTTP.AllowOrigins},
		RateLimit:    api.RateLimitConfig{RPS: s.c.RateLimit.RPS, Burst: s.c.RateLimit.Burst},
	}
	// Keep Redis a nil interface when pubsub is disabled.
	if s.infra.redis.pubsub != nil {
		c.Redis = s.infra.redis.pubsub
	}
	api.New(c)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.c.GRPC.Port))
	if err != nil {
		slog.ErrorContext(ctx, "grpc server: listen failed", "error", err)
		panic(err)
	}

	var eg errgroup.Group
	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: gRPC listening on port %d", s.c.GRPC.Port))
		return s.grpc.Serve(lis)
	})

	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	err = eg.Wait()
	if err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.grpc.GracefulStop()
	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.eb.Stop()
	s.closeInfra(ctx)

	slog.InfoContext(ctx, "server: shutdown completed")
	_ = s.logCloser.Close()
}
