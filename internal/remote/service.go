// Package remote exposes the player over gRPC so other processes can drive
// a running recitation.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/player"
	"github.com/santorosario/rosario/internal/sequences"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "rosario.v1.RemoteControl"

// Method names.
const (
	MethodPing       = "Ping"
	MethodPlay       = "Play"
	MethodPause      = "Pause"
	MethodNext       = "Next"
	MethodPrevious   = "Previous"
	MethodRespond    = "Respond"
	MethodJump       = "Jump"
	MethodStatus     = "Status"
	MethodNavigation = "Navigation"
	MethodConfigure  = "Configure"
)

// FullMethod returns the gRPC path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Controller is the part of the player the remote service drives.
type Controller interface {
	Resume()
	Pause()
	Next()
	Previous()
	RespondNow()
	JumpTo(index int)
	UpdateSequence(seq *models.Sequence)
	Status() player.Status
	NavigationPoints() []sequences.NavigationPoint
}

// SequenceSource builds the sequence for a configuration profile. An empty
// name means the saved settings.
type SequenceSource func(ctx context.Context, profile string) (*models.Sequence, error)

// RemoteControlServer is the server API of the remote control service.
type RemoteControlServer interface {
	Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Play(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Pause(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Next(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Previous(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Respond(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Jump(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Navigation(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Configure(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// Server maps remote triggers one to one onto controller calls. Every
// action replies with the resulting status.
type Server struct {
	logger    zerolog.Logger
	ctrl      Controller
	startedAt time.Time
	version   string
	source    SequenceSource
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithVersion sets the reported version.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithSequenceSource enables Configure.
func WithSequenceSource(source SequenceSource) ServerOption {
	return func(s *Server) {
		s.source = source
	}
}

// NewServer creates the remote control service for ctrl.
func NewServer(ctrl Controller, logger zerolog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		logger:    logger,
		ctrl:      ctrl,
		startedAt: time.Now(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping reports the daemon version and uptime.
func (s *Server) Ping(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"version": s.version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// Play resumes playback.
func (s *Server) Play(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.act(MethodPlay, s.ctrl.Resume)
}

// Pause pauses playback.
func (s *Server) Pause(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.act(MethodPause, s.ctrl.Pause)
}

// Next skips to the following segment.
func (s *Server) Next(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.act(MethodNext, s.ctrl.Next)
}

// Previous goes back one segment.
func (s *Server) Previous(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.act(MethodPrevious, s.ctrl.Previous)
}

// Respond triggers a manual reply.
func (s *Server) Respond(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.act(MethodRespond, s.ctrl.RespondNow)
}

// Jump moves the cursor to an index of the enabled view.
func (s *Server) Jump(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	index := int(req.GetValue())
	total := s.ctrl.Status().Total
	if index < 0 || index >= total {
		return nil, status.Errorf(codes.OutOfRange, "index %d outside 0..%d", index, total-1)
	}
	return s.act(MethodJump, func() { s.ctrl.JumpTo(index) })
}

// Status returns the current status without changing anything.
func (s *Server) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return statusToStruct(s.ctrl.Status())
}

// Navigation lists the jump targets.
func (s *Server) Navigation(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	points := s.ctrl.NavigationPoints()
	list := make([]any, 0, len(points))
	for _, point := range points {
		list = append(list, map[string]any{"label": point.Label, "index": point.Index})
	}
	return structpb.NewStruct(map[string]any{"points": list})
}

// Configure rebuilds the sequence from a profile and re-points the player to
// it. Playback is left paused at the start.
func (s *Server) Configure(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s.source == nil {
		return nil, status.Error(codes.Unimplemented, "configuration is not available on this daemon")
	}
	profile := req.GetValue()
	seq, err := s.source(ctx, profile)
	if err != nil {
		if errors.Is(err, sequences.ErrProfileNotFound) {
			return nil, status.Errorf(codes.NotFound, "profile %q not found", profile)
		}
		return nil, status.Errorf(codes.Internal, "build sequence: %v", err)
	}
	s.logger.Info().
		Str("profile", profile).
		Str("sequence", seq.ID).
		Str("theme", string(seq.Theme)).
		Msg("sequence replaced")
	return s.act(MethodConfigure, func() { s.ctrl.UpdateSequence(seq) })
}

func (s *Server) act(method string, fn func()) (*structpb.Struct, error) {
	fn()
	current := s.ctrl.Status()
	s.logger.Debug().
		Str("method", method).
		Int("cursor", current.Cursor).
		Bool("playing", current.Playing).
		Msg("remote command")
	return statusToStruct(current)
}

func statusToStruct(st player.Status) (*structpb.Struct, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	return out, nil
}

func statusFromStruct(s *structpb.Struct) (player.Status, error) {
	var st player.Status
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return st, fmt.Errorf("decode status: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("decode status: %w", err)
	}
	return st, nil
}

// RegisterRemoteControlServer registers srv on s.
func RegisterRemoteControlServer(s grpc.ServiceRegistrar, srv RemoteControlServer) {
	s.RegisterService(&serviceDesc, srv)
}

func unaryMethod[T any](method string, call func(RemoteControlServer, context.Context, *T) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(T)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RemoteControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(RemoteControlServer), ctx, req.(*T))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// serviceDesc is written by hand; the messages are well-known types so no
// generated code is needed.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RemoteControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodPing, RemoteControlServer.Ping),
		unaryMethod(MethodPlay, RemoteControlServer.Play),
		unaryMethod(MethodPause, RemoteControlServer.Pause),
		unaryMethod(MethodNext, RemoteControlServer.Next),
		unaryMethod(MethodPrevious, RemoteControlServer.Previous),
		unaryMethod(MethodRespond, RemoteControlServer.Respond),
		unaryMethod(MethodStatus, RemoteControlServer.Status),
		unaryMethod(MethodNavigation, RemoteControlServer.Navigation),
		unaryMethod(MethodJump, RemoteControlServer.Jump),
		unaryMethod(MethodConfigure, RemoteControlServer.Configure),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rosario/v1/remote.proto",
}
