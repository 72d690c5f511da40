package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/santorosario/rosario/internal/config"
	"github.com/santorosario/rosario/internal/logging"
	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/player"
	"github.com/santorosario/rosario/internal/remote"
	"github.com/santorosario/rosario/internal/sequences"
	"github.com/santorosario/rosario/internal/telemetry"
)

var (
	serveSimulate  bool
	serveAutostart bool
	serveNoHTTP    bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	addSequenceFlags(serveCmd.Flags())

	serveCmd.Flags().BoolVar(&serveSimulate, "simulate", false, "use the simulated audio engine")
	serveCmd.Flags().BoolVar(&serveAutostart, "autostart", false, "start playing immediately")
	serveCmd.Flags().BoolVar(&serveNoHTTP, "no-http", false, "disable the HTTP status server")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a headless player with remote control",
	Long: `Run the player without a TUI. It is driven over gRPC (rosario remote ...)
and reports its state over HTTP at /status, /navigation and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func runServe(ctx context.Context) error {
	cfg := GetConfig()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics, err := telemetry.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	rt, err := newPlaybackRuntime(ctx, playbackOptions{
		Simulate:   serveSimulate,
		Publishers: []player.Publisher{metrics},
		Sinks:      []player.EventSink{telemetry.NewMetricsSink(metrics)},
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	daemon, err := newRemoteDaemon(cfg, rt.controller, profileSequence)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- daemon.Run(ctx)
	}()

	var httpServer *http.Server
	if !serveNoHTTP {
		httpServer = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           telemetry.NewRouter(rt.controller, registry, metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			rt.logger.Info().Str("addr", cfg.HTTP.Addr).Msg("status server listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("status server: %w", err)
			}
		}()
	}

	metrics.Publish(rt.controller.Status())
	if serveAutostart {
		rt.controller.Start()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			rt.logger.Warn().Err(err).Msg("status server shutdown")
		}
	}
	if runErr != nil {
		rt.logError(runErr, "serve")
	}
	return runErr
}

// profileSequence builds the sequence a remote Configure asks for. The
// theme flags given to serve still apply.
func profileSequence(ctx context.Context, profile string) (*models.Sequence, error) {
	settings, err := loadProfileSettings(ctx, profile)
	if err != nil {
		return nil, err
	}
	return sequences.Build(settings.Configuration, settings.Theme), nil
}

func newRemoteDaemon(cfg *config.Config, ctrl remote.Controller, source remote.SequenceSource) (*remote.Daemon, error) {
	host, port, err := splitHostPort(cfg.Remote.Addr)
	if err != nil {
		return nil, fmt.Errorf("remote.addr: %w", err)
	}
	limits, err := remoteRateLimits(cfg.Remote.RateLimit)
	if err != nil {
		return nil, err
	}

	limiter := remote.NewRateLimiter(
		remote.WithEnabled(cfg.Remote.RateLimitEnabled),
		remote.WithMethodLimits(limits),
	)
	return remote.New(ctrl, logging.Component("remote"), remote.Options{
		Hostname:    host,
		Port:        port,
		Version:     version,
		RateLimiter: limiter,
		Sequences:   source,
	})
}

func splitHostPort(addr string) (string, int, error) {
	host, portText, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portText)
	}
	return host, port, nil
}

var remoteMethods = []string{
	remote.MethodPing,
	remote.MethodPlay,
	remote.MethodPause,
	remote.MethodNext,
	remote.MethodPrevious,
	remote.MethodRespond,
	remote.MethodJump,
	remote.MethodStatus,
	remote.MethodNavigation,
	remote.MethodConfigure,
}

// remoteRateLimits maps configured limits, keyed by method name in any case,
// to full gRPC method paths.
func remoteRateLimits(limits map[string]config.RateLimit) (map[string]remote.RateLimitConfig, error) {
	out := make(map[string]remote.RateLimitConfig, len(limits))
	for key, limit := range limits {
		method := ""
		for _, candidate := range remoteMethods {
			if strings.EqualFold(strings.TrimSpace(key), candidate) {
				method = candidate
				break
			}
		}
		if method == "" {
			return nil, fmt.Errorf("remote.rate_limit: unknown method %q", key)
		}
		out[remote.FullMethod(method)] = remote.RateLimitConfig{
			RequestsPerSecond: limit.RPS,
			BurstSize:         limit.Burst,
		}
	}
	return out, nil
}
