package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/asheeshkh/mausam/internal/cache"
	"github.com/asheeshkh/mausam/internal/client"
	"github.com/asheeshkh/mausam/internal/config"
	"github.com/asheeshkh/mausam/internal/observability"
	"github.com/asheeshkh/mausam/internal/service"
	"github.com/asheeshkh/mausam/internal/session"
)

// NewRootCmd creates the mausam root command. Running it starts the
// interactive session.
func NewRootCmd(version string) *cobra.Command {
	var configPath string
	var apiKey string

	cmd := &cobra.Command{
		Use:     "mausam",
		Short:   "Interactive weather for Indian cities and pincodes",
		Long: "mausam fetches current weather and tomorrow's forecast for Indian\n" +
			"locations from OpenWeatherMap, caching recent lookups for five minutes.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, configPath, apiKey)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file (default $MAUSAM_CONFIG)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenWeatherMap API key (overrides OPENWEATHER_API_KEY)")

	return cmd
}

func run(cmd *cobra.Command, configPath, apiKey string) error {
	logger, err := observability.NewLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}

	if cfg.APIKey == "" {
		if isTerminal(os.Stdin) {
			key, err := session.PromptAPIKey(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			cfg.APIKey = key
		}
		if cfg.APIKey == "" {
			return fmt.Errorf("API key required: set OPENWEATHER_API_KEY or pass --api-key (get one at https://openweathermap.org/api)")
		}
	}

	weatherClient, err := client.NewOpenWeatherClient(
		cfg.APIKey,
		cfg.APIBaseURL,
		cfg.APITimeout,
		cfg.OutboundRPS,
		client.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("weather client: %w", err)
	}

	store, backend, closeStore := buildStore(cfg, logger)
	defer closeStore()

	svc := service.New(weatherClient, store, cfg.CacheTTL, backend, logger)

	if len(cfg.Favourites) > 0 {
		cache.NewPrefetcher(svc, logger).Warm(cmd.Context(), cfg.Favourites)
	}

	sess := session.New(svc, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	return sess.Run(cmd.Context())
}

// buildStore selects the cache backend from config. A memcached backend that
// fails its startup ping falls back to in-memory so the session still works.
func buildStore(cfg *config.Config, logger *zap.Logger) (cache.Store, string, func()) {
	if cfg.CacheBackend == "memcached" {
		mc, err := cache.NewMemcached(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err == nil {
			if pingErr := mc.Ping(); pingErr == nil {
				logger.Info("using memcached cache", zap.String("addrs", cfg.MemcachedAddrs))
				return mc, "memcached", func() { _ = mc.Close() }
			} else {
				err = pingErr
			}
		}
		logger.Warn("memcached unavailable, falling back to in-memory cache",
			zap.String("addrs", cfg.MemcachedAddrs), zap.Error(err))
	}
	return cache.NewMemory(), "in_memory", func() {}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
