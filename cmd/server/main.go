// Command server runs the moodlog journaling API.
//
// Configuration is read by pkg/config: defaults, then a YAML file
// (-config, MOODLOG_CONFIG, ./config.yaml, /etc/moodlog/config.yaml), then
// a .env file, then MOODLOG_* environment variables. The legacy
// OPENROUTER_API_KEY variable is still honored.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/diarydepresiku/moodlog/pkg/account"
	"github.com/diarydepresiku/moodlog/pkg/assist"
	"github.com/diarydepresiku/moodlog/pkg/auth"
	"github.com/diarydepresiku/moodlog/pkg/auth/apikey"
	"github.com/diarydepresiku/moodlog/pkg/auth/jwt"
	"github.com/diarydepresiku/moodlog/pkg/auth/noop"
	"github.com/diarydepresiku/moodlog/pkg/config"
	"github.com/diarydepresiku/moodlog/pkg/debug"
	"github.com/diarydepresiku/moodlog/pkg/mcpserver"
	"github.com/diarydepresiku/moodlog/pkg/observability"
	"github.com/diarydepresiku/moodlog/pkg/provider"
	"github.com/diarydepresiku/moodlog/pkg/storage/memory"
	"github.com/diarydepresiku/moodlog/pkg/storage/postgres"
	"github.com/diarydepresiku/moodlog/pkg/transport"
	transporthttp "github.com/diarydepresiku/moodlog/pkg/transport/http"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// store is satisfied by both storage backends.
type store interface {
	transport.EntryStore
	transport.UserStore
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()

	factory := provider.NewFactory(provider.Config{
		BaseURL:      cfg.Provider.BaseURL,
		APIKey:       cfg.Provider.APIKey,
		Timeout:      cfg.Provider.Timeout,
		Referer:      cfg.Provider.Referer,
		Title:        cfg.Provider.Title,
		ModelMapping: cfg.Provider.ModelMapping,
	})
	logger.Info("provider configured", "provider", factory.String())

	assistant := assist.New(assist.FromProvider(factory),
		assist.WithObserver(observability.ObserveProvider),
		assist.WithLogger(logger),
	)

	tokens, err := jwt.New(jwt.Config{
		Secret: cfg.Auth.JWT.Secret,
		Issuer: cfg.Auth.JWT.Issuer,
		TTL:    cfg.Auth.JWT.TTL,
	})
	if err != nil {
		return fmt.Errorf("creating token manager: %w", err)
	}

	accounts, err := account.New(st, tokens, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating account service: %w", err)
	}

	entries := observability.InstrumentEntryStore(st)

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithReadHeaderTimeout(cfg.Server.ReadHeaderTimeout),
		transporthttp.WithLogger(logger),
	}

	if cfg.Observability.Metrics.Enabled {
		opts = append(opts,
			transporthttp.WithMiddleware(observability.MetricsMiddleware),
			transporthttp.WithHandler("GET "+cfg.Observability.Metrics.Path, observability.Handler()),
		)
	}

	chain, err := buildAuthChain(cfg.Auth, tokens)
	if err != nil {
		return err
	}
	bypass := append([]string{cfg.Observability.Metrics.Path}, auth.DefaultBypassEndpoints...)
	opts = append(opts, transporthttp.WithMiddleware(auth.Middleware(chain, bypass)))

	if cfg.MCP.Enabled {
		mcpSrv := mcpserver.New(entries, assistant, version, logger)
		opts = append(opts, transporthttp.WithHandler(cfg.MCP.Path, mcpSrv.Handler()))
		logger.Info("mcp tools enabled", "path", cfg.MCP.Path)
	}

	srv := transporthttp.NewServer(entries, assistant, accounts, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return factory.Close()
	})

	logger.Info("moodlog starting",
		"version", version,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"auth", cfg.Auth.Type,
		"metrics", cfg.Observability.Metrics.Enabled,
		"mcp", cfg.MCP.Enabled,
	)
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.StorageConfig) (store, error) {
	switch cfg.Type {
	case "postgres":
		s, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres")
		return s, nil
	default:
		slog.Info("storage enabled", "type", "memory", "max_size", cfg.MaxSize)
		return memory.New(cfg.MaxSize), nil
	}
}

func buildAuthChain(cfg config.AuthConfig, tokens *jwt.Manager) (*auth.AuthChain, error) {
	switch cfg.Type {
	case "none":
		return &auth.AuthChain{
			Authenticators: []auth.Authenticator{noop.Authenticator{}},
		}, nil
	case "apikey":
		keys := make([]apikey.Key, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			keys = append(keys, apikey.Key{Name: k.Name, Value: k.Key})
		}
		return &auth.AuthChain{
			Authenticators:  []auth.Authenticator{apikey.New(keys)},
			DefaultDecision: auth.No,
		}, nil
	case "jwt":
		return &auth.AuthChain{
			Authenticators:  []auth.Authenticator{tokens},
			DefaultDecision: auth.No,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported auth type %q", cfg.Type)
	}
}
