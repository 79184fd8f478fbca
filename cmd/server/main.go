package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/varix-web/drawings"
	"github.com/jrsteele09/varix-web/drawings/postgres"
	"github.com/jrsteele09/varix-web/drawings/s3store"
	"github.com/jrsteele09/varix-web/internal/config"
	"github.com/jrsteele09/varix-web/internal/metrics"
	"github.com/jrsteele09/varix-web/server"
	"github.com/jrsteele09/varix-web/server/loginsession"
	"github.com/jrsteele09/varix-web/server/recoveryflow"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/jrsteele09/varix-web/supabase"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()
	var handler http.Handler
	var closers []io.Closer

	if cfgErr := config.Validate(c); cfgErr != nil {
		handler = server.NewConfigErrorHandler(c, cfgErr)
	} else {
		srv, cs, err := buildServer(ctx, c)
		closers = cs
		defer closeAll(closers)
		if err != nil {
			return err
		}
		handler = srv
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// buildServer wires the configured backends. Closers are returned even on
// error so whatever was opened gets released.
func buildServer(ctx context.Context, c config.Config) (*server.Server, []io.Closer, error) {
	var closers []io.Closer

	client, err := supabase.New(c.GetSupabaseURL(), c.GetSupabaseAnonKey(),
		supabase.WithVerifier(tokenVerifier(ctx, c)),
		supabase.WithDetectSessionInURL(c.GetDetectSessionInURL()),
	)
	if err != nil {
		return nil, closers, err
	}

	store, err := sessionStore(ctx, c)
	if err != nil {
		return nil, closers, err
	}
	if cl, ok := store.(io.Closer); ok {
		closers = append(closers, cl)
	}

	repo, err := drawingsRepo(ctx, c, client)
	if err != nil {
		return nil, closers, err
	}
	if cl, ok := repo.(io.Closer); ok {
		closers = append(closers, cl)
	}

	objects, err := objectStore(ctx, c, client)
	if err != nil {
		return nil, closers, err
	}

	m := metrics.New()
	srv, err := server.New(c, server.Deps{
		Browsers: server.SupabaseBrowsers(client),
		Sessions: store,
		Recovery: recoveryflow.NewInMemoryRepo(c.GetRecoveryFlowTTL()),
		Drawings: drawings.NewService(repo, objects, drawings.WithObserver(m)),
		Metrics:  m,
	})
	return srv, closers, err
}

func tokenVerifier(ctx context.Context, c config.SupabaseConfig) supabase.TokenVerifier {
	switch {
	case c.GetSupabaseJWTSecret() != "":
		log.Info().Msg("Verifying access tokens with the project JWT secret")
		return supabase.NewHMACVerifier(c.GetSupabaseJWTSecret())
	case c.GetSupabaseJWKSURL() != "":
		log.Info().Str("jwks_url", c.GetSupabaseJWKSURL()).Msg("Verifying access tokens with the project JWKS")
		return supabase.NewJWKSVerifier(ctx, c.GetSupabaseJWKSURL(), http.DefaultClient)
	default:
		log.Warn().Msg("No JWT secret or JWKS URL, access tokens are checked by the auth server only")
		return supabase.UnverifiedVerifier{}
	}
}

func sessionStore(ctx context.Context, c config.SecurityConfig) (sessions.Repo, error) {
	if c.GetSessionStore() != config.SessionStoreRedis {
		log.Info().Msg("Using in-memory session store")
		return loginsession.NewInMemoryRepoWithTTL(c.GetMaxSessionAge()), nil
	}

	log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis session store")
	return loginsession.NewRedisRepo(ctx, loginsession.RedisOptions{
		Addr:     c.GetRedisAddr(),
		Password: c.GetRedisPassword(),
		DB:       c.GetRedisDB(),
		TTL:      c.GetMaxSessionAge(),
	})
}

func drawingsRepo(ctx context.Context, c config.DatabaseConfig, client *supabase.Client) (drawings.Repo, error) {
	if c.GetDatabaseURL() == "" {
		log.Info().Msg("DATABASE_URL not set, drawing records go through the project REST API")
		return client.DrawingFiles(), nil
	}

	pool, err := postgres.NewPool(ctx, c.GetDatabaseURL(), startupTimeout)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Drawing records stored in Postgres")
	return &pooledRepo{Repo: postgres.New(pool), close: pool.Close}, nil
}

// pooledRepo releases the connection pool on shutdown.
type pooledRepo struct {
	*postgres.Repo
	close func()
}

func (p *pooledRepo) Close() error {
	p.close()
	return nil
}

func objectStore(ctx context.Context, c config.StorageConfig, client *supabase.Client) (drawings.ObjectStore, error) {
	if c.GetStorageBackend() != config.StorageBackendS3 {
		return client.Storage(c.GetStorageBucket()), nil
	}

	sctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	log.Info().Str("endpoint", c.GetS3Endpoint()).Str("bucket", c.GetStorageBucket()).Msg("Using S3 object storage")
	return s3store.New(sctx, s3store.Options{
		Endpoint:  c.GetS3Endpoint(),
		Region:    c.GetS3Region(),
		AccessKey: c.GetS3AccessKey(),
		SecretKey: c.GetS3SecretKey(),
		Bucket:    c.GetStorageBucket(),
	})
}

func closeAll(closers []io.Closer) {
	for _, cl := range closers {
		if err := cl.Close(); err != nil {
			log.Err(err).Msg("Failed to close resource")
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
