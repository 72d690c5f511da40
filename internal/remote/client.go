package remote

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/santorosario/rosario/internal/player"
	"github.com/santorosario/rosario/internal/sequences"
)

// Client talks to a running rosario daemon.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target. The connection is plaintext; the daemon binds to
// loopback by default.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	if target == "" {
		return nil, errors.New("target is required")
	}
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping returns the daemon's version and uptime.
func (c *Client) Ping(ctx context.Context) (map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(MethodPing), &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// Play resumes playback.
func (c *Client) Play(ctx context.Context) (player.Status, error) {
	return c.call(ctx, MethodPlay)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) (player.Status, error) {
	return c.call(ctx, MethodPause)
}

// Next skips to the following segment.
func (c *Client) Next(ctx context.Context) (player.Status, error) {
	return c.call(ctx, MethodNext)
}

// Previous goes back one segment.
func (c *Client) Previous(ctx context.Context) (player.Status, error) {
	return c.call(ctx, MethodPrevious)
}

// Respond triggers a manual reply.
func (c *Client) Respond(ctx context.Context) (player.Status, error) {
	return c.call(ctx, MethodRespond)
}

// Status returns the current status.
func (c *Client) Status(ctx context.Context) (player.Status, error) {
	return c.call(ctx, MethodStatus)
}

// Jump moves the cursor to index.
func (c *Client) Jump(ctx context.Context, index int) (player.Status, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(MethodJump), wrapperspb.Int32(int32(index)), out); err != nil {
		return player.Status{}, err
	}
	return statusFromStruct(out)
}

// Configure re-points the daemon's player to the sequence of profile, or of
// the saved settings when profile is empty.
func (c *Client) Configure(ctx context.Context, profile string) (player.Status, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(MethodConfigure), wrapperspb.String(profile), out); err != nil {
		return player.Status{}, err
	}
	return statusFromStruct(out)
}

// Navigation lists the jump targets of the daemon's sequence.
func (c *Client) Navigation(ctx context.Context) ([]sequences.NavigationPoint, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(MethodNavigation), &emptypb.Empty{}, out); err != nil {
		return nil, err
	}

	var points []sequences.NavigationPoint
	for _, value := range out.GetFields()["points"].GetListValue().GetValues() {
		fields := value.GetStructValue().GetFields()
		points = append(points, sequences.NavigationPoint{
			Label: fields["label"].GetStringValue(),
			Index: int(fields["index"].GetNumberValue()),
		})
	}
	return points, nil
}

func (c *Client) call(ctx context.Context, method string) (player.Status, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), &emptypb.Empty{}, out); err != nil {
		return player.Status{}, err
	}
	return statusFromStruct(out)
}
