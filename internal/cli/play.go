package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/santorosario/rosario/internal/player"
	"github.com/santorosario/rosario/internal/tui"
)

var (
	playResponsorial bool
	playSolo         bool
	playNoAutoVoice  bool
	playSimulate     bool
	playHeadless     bool
	playRate         float64
)

func init() {
	rootCmd.AddCommand(playCmd)
	addSequenceFlags(playCmd.Flags())

	playCmd.Flags().BoolVar(&playResponsorial, "responsorial", false, "call-and-response mode")
	playCmd.Flags().BoolVar(&playSolo, "solo", false, "solo mode")
	playCmd.Flags().BoolVar(&playNoAutoVoice, "no-auto-voice", false, "wait for a manual response instead of playing replies")
	playCmd.Flags().BoolVar(&playSimulate, "simulate", false, "use the simulated audio engine")
	playCmd.Flags().BoolVar(&playHeadless, "headless", false, "play without the TUI until the end")
	playCmd.Flags().Float64Var(&playRate, "rate", 0, "playback rate (0.5 to 2.0)")
	playCmd.MarkFlagsMutuallyExclusive("responsorial", "solo")
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Pray the Rosary",
	Long: `Play the recitation in the terminal player.

With --headless the controller runs without a TUI until the last segment and
logs progress; with --jsonl playback events are written to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := playbackOptions{
			Simulate:     playSimulate,
			Responsorial: playResponsorial,
			Solo:         playSolo,
			NoAutoVoice:  playNoAutoVoice,
			Rate:         playRate,
		}
		if playHeadless || IsJSONOutput() || IsJSONLOutput() {
			return runHeadless(cmd.Context(), opts)
		}
		return runPlayerTUI(cmd.Context(), opts)
	},
}

func runPlayerTUI(ctx context.Context, opts playbackOptions) error {
	if IsNonInteractive() {
		return &PreflightError{
			Message:  "the player requires an interactive terminal",
			Hint:     "Run with a TTY, or play without the TUI",
			NextStep: "rosario play --headless",
		}
	}

	bridge := tui.NewStatusBridge()
	opts.Publishers = append(opts.Publishers, bridge)

	rt, err := newPlaybackRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	err = tui.Run(tui.Config{
		Controller: rt.controller,
		Bridge:     bridge,
		Theme:      GetConfig().TUI.Theme,
		Autoplay:   true,
	})
	if err != nil {
		rt.logError(err, "tui")
	}
	return err
}

func runHeadless(ctx context.Context, opts playbackOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	finished := make(chan struct{})
	var once sync.Once
	opts.Publishers = append(opts.Publishers, player.PublisherFunc(func(status player.Status) {
		if status.Finished {
			once.Do(func() { close(finished) })
		}
	}))
	if IsJSONLOutput() {
		opts.Sinks = append(opts.Sinks, player.NewJSONLinesSink(os.Stdout))
	}

	rt, err := newPlaybackRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.settings.Responsorial() && !rt.settings.AutoVoiceReply {
		return &PreflightError{
			Message: "headless responsorial playback needs automatic replies",
			Hint:    "Drop --no-auto-voice, or use the TUI to respond",
		}
	}

	status := rt.controller.Status()
	rt.logger.Info().
		Str("theme", string(status.Theme)).
		Int("segments", status.Total).
		Str("mode", string(status.Mode())).
		Msg("starting recitation")

	rt.controller.Start()

	select {
	case <-finished:
		if !IsJSONLOutput() && !IsJSONOutput() {
			fmt.Println("Rosario completado.")
		}
		return nil
	case <-ctx.Done():
		rt.logger.Info().Msg("interrupted")
		return nil
	}
}
