package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/santorosario/rosario/internal/player"
	"github.com/santorosario/rosario/internal/remote"
)

var (
	remoteAddr    string
	remoteTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.PersistentFlags().StringVar(&remoteAddr, "addr", "", "daemon address (default remote.addr)")
	remoteCmd.PersistentFlags().DurationVar(&remoteTimeout, "timeout", 5*time.Second, "request timeout")

	for _, verb := range remoteVerbs {
		remoteCmd.AddCommand(newRemoteVerbCmd(verb))
	}
	remoteCmd.AddCommand(remoteJumpCmd)
	remoteCmd.AddCommand(remotePingCmd)
	remoteCmd.AddCommand(remoteNavigationCmd)
	remoteCmd.AddCommand(remoteConfigureCmd)
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Control a running player",
	Long:  "Send transport commands to a player started with `rosario serve`.",
}

type remoteVerb struct {
	use   string
	short string
	call  func(*remote.Client, context.Context) (player.Status, error)
}

var remoteVerbs = []remoteVerb{
	{"play", "Start or resume playback", (*remote.Client).Play},
	{"pause", "Pause playback", (*remote.Client).Pause},
	{"next", "Skip to the next segment", (*remote.Client).Next},
	{"previous", "Go back one segment", (*remote.Client).Previous},
	{"respond", "Give the response now", (*remote.Client).Respond},
	{"status", "Show the player status", (*remote.Client).Status},
}

func newRemoteVerbCmd(verb remoteVerb) *cobra.Command {
	return &cobra.Command{
		Use:   verb.use,
		Short: verb.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRemote(func(ctx context.Context, client *remote.Client) error {
				st, err := verb.call(client, ctx)
				if err != nil {
					return remoteError(err)
				}
				return printStatus(st)
			})
		},
	}
}

var remoteJumpCmd = &cobra.Command{
	Use:   "jump <index>",
	Short: "Jump to a segment of the enabled sequence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		return withRemote(func(ctx context.Context, client *remote.Client) error {
			st, err := client.Jump(ctx, index)
			if err != nil {
				return remoteError(err)
			}
			return printStatus(st)
		})
	},
}

var remotePingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the player is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRemote(func(ctx context.Context, client *remote.Client) error {
			info, err := client.Ping(ctx)
			if err != nil {
				return remoteError(err)
			}
			if IsJSONOutput() || IsJSONLOutput() {
				return WriteOutput(os.Stdout, info)
			}
			fmt.Printf("ok (version %v)\n", info["version"])
			return nil
		})
	},
}

var remoteNavigationCmd = &cobra.Command{
	Use:   "navigation",
	Short: "List the player's jump targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRemote(func(ctx context.Context, client *remote.Client) error {
			points, err := client.Navigation(ctx)
			if err != nil {
				return remoteError(err)
			}
			if IsJSONOutput() || IsJSONLOutput() {
				return WriteOutput(os.Stdout, points)
			}
			rows := make([][]string, 0, len(points))
			for _, point := range points {
				rows = append(rows, []string{strconv.Itoa(point.Index), point.Label})
			}
			return writeTable(os.Stdout, []string{"INDEX", "LABEL"}, rows)
		})
	},
}

var remoteConfigureCmd = &cobra.Command{
	Use:   "configure [profile]",
	Short: "Reload the player's sequence from a profile or the saved settings",
	Long: `Rebuild the running player's sequence. With a profile name the profile's
blocks are used; without one the saved settings are reloaded, so changes made
with "rosario configure" or "rosario settings set" reach a running player.
Playback restarts from the beginning, paused.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := ""
		if len(args) == 1 {
			profile = args[0]
		}
		return withRemote(func(ctx context.Context, client *remote.Client) error {
			st, err := client.Configure(ctx, profile)
			if err != nil {
				return remoteError(err)
			}
			return printStatus(st)
		})
	},
}

func withRemote(fn func(context.Context, *remote.Client) error) error {
	addr := remoteAddr
	if addr == "" {
		addr = GetConfig().Remote.Addr
	}
	client, err := remote.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()
	return fn(ctx, client)
}

func remoteError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return &PreflightError{
			Message:  "player is not reachable: " + st.Message(),
			Hint:     "Start a player with remote control enabled",
			NextStep: "rosario serve",
		}
	case codes.ResourceExhausted:
		return fmt.Errorf("too many requests: %s", st.Message())
	case codes.NotFound:
		return &PreflightError{
			Message:  st.Message(),
			Hint:     "List available profiles",
			NextStep: "rosario profiles",
		}
	default:
		return fmt.Errorf("%s", st.Message())
	}
}

func printStatus(st player.Status) error {
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(os.Stdout, st)
	}
	for _, line := range formatStatusLines(st) {
		fmt.Println(line)
	}
	return nil
}
