package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
)

// DefaultPort is the default remote control port.
const DefaultPort = 7480

// Options configure the daemon runtime.
type Options struct {
	Hostname string
	Port     int
	Version  string

	// RateLimiter guards the service; nil uses the defaults.
	RateLimiter *RateLimiter
	// Sequences enables Configure; nil leaves it unimplemented.
	Sequences SequenceSource
	// Interceptors run after the rate limiter.
	Interceptors []grpc.UnaryServerInterceptor
}

// Daemon serves the remote control service for one controller.
type Daemon struct {
	logger zerolog.Logger
	opts   Options

	server     *Server
	grpcServer *grpc.Server
}

// New constructs a daemon for ctrl.
func New(ctrl Controller, logger zerolog.Logger, opts Options) (*Daemon, error) {
	if ctrl == nil {
		return nil, errors.New("controller is required")
	}
	if opts.Hostname == "" {
		opts.Hostname = "127.0.0.1"
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.RateLimiter == nil {
		opts.RateLimiter = NewRateLimiter()
	}

	server := NewServer(ctrl, logger, WithVersion(opts.Version), WithSequenceSource(opts.Sequences))

	interceptors := append([]grpc.UnaryServerInterceptor{opts.RateLimiter.UnaryServerInterceptor()}, opts.Interceptors...)
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	RegisterRemoteControlServer(grpcServer, server)

	return &Daemon{
		logger:     logger,
		opts:       opts,
		server:     server,
		grpcServer: grpcServer,
	}, nil
}

// Run listens on the configured address and serves until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	bindAddr := d.bindAddr()
	listener, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", bindAddr, err)
	}
	return d.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled.
func (d *Daemon) Serve(ctx context.Context, listener net.Listener) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	d.logger.Info().
		Str("bind", listener.Addr().String()).
		Str("version", d.opts.Version).
		Msg("remote control server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := d.grpcServer.Serve(listener); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		d.logger.Info().Msg("remote control shutting down")
		d.grpcServer.GracefulStop()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
	}

	d.logger.Info().Msg("remote control stopped")
	return nil
}

// Addr returns the configured bind address.
func (d *Daemon) Addr() string {
	return d.bindAddr()
}

func (d *Daemon) bindAddr() string {
	return net.JoinHostPort(d.opts.Hostname, strconv.Itoa(d.opts.Port))
}

// Server returns the service implementation.
func (d *Daemon) Server() *Server {
	return d.server
}
