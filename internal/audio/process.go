package audio

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/creack/pty"
	"github.com/rs/zerolog"
)

// ErrMissingCommand indicates the player command template is empty or has
// no {file} placeholder.
var ErrMissingCommand = errors.New("player command must reference {file}")

// DefaultPlayerCommand plays one clip with ffplay and exits.
const DefaultPlayerCommand = "ffplay -nodisp -autoexit -loglevel quiet -volume {volume} -af atempo={rate} {file}"

const outputTailLines = 20

// ProcessEngine plays each clip by running an external player attached to a
// pty. Stopping kills the process.
type ProcessEngine struct {
	library Library
	command []string
	logger  zerolog.Logger

	mu      sync.Mutex
	nextID  uint64
	current *process
}

type process struct {
	id      uint64
	ref     string
	cmd     *exec.Cmd
	pty     *os.File
	output  *tail
	stopped bool
}

// NewProcessEngine returns an engine running command for each clip. The
// command is split on whitespace; {file}, {volume} (0-100) and {rate} are
// substituted per playback.
func NewProcessEngine(library Library, command string, logger zerolog.Logger) (*ProcessEngine, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 || !strings.Contains(command, "{file}") {
		return nil, ErrMissingCommand
	}
	return &ProcessEngine{
		library: library,
		command: fields,
		logger:  logger,
	}, nil
}

// Load resolves ref against the library.
func (e *ProcessEngine) Load(ref string) (Handle, error) {
	path, err := e.library.Resolve(ref)
	if err != nil {
		return Handle{}, err
	}
	return Handle{Ref: ref, Path: path}, nil
}

// Play stops any running clip and starts the player for h.
func (e *ProcessEngine) Play(h Handle, opts PlayOptions, done func(success bool)) error {
	if h.Path == "" {
		return ErrInvalidHandle
	}
	e.Stop()

	args := expandCommand(e.command, h.Path, opts)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = os.Environ()

	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start player: %w", err)
	}

	e.mu.Lock()
	e.nextID++
	proc := &process{
		id:     e.nextID,
		ref:    h.Ref,
		cmd:    cmd,
		pty:    ptyFile,
		output: newTail(outputTailLines),
	}
	e.current = proc
	e.mu.Unlock()

	e.logger.Debug().
		Str("ref", h.Ref).
		Float64("volume", opts.Volume).
		Float64("rate", normalizeRate(opts.Rate)).
		Msg("player started")

	go proc.drain()
	go e.wait(proc, done)
	return nil
}

// Stop kills the running player, if any. Its completion is not reported.
func (e *ProcessEngine) Stop() {
	e.mu.Lock()
	proc := e.current
	e.current = nil
	if proc != nil {
		proc.stopped = true
	}
	e.mu.Unlock()

	if proc != nil && proc.cmd.Process != nil {
		_ = proc.cmd.Process.Kill()
	}
}

// Pause stops output; external players cannot resume mid-clip.
func (e *ProcessEngine) Pause() {
	e.Stop()
}

func (e *ProcessEngine) wait(proc *process, done func(bool)) {
	err := proc.cmd.Wait()
	_ = proc.pty.Close()

	e.mu.Lock()
	stale := proc.stopped || e.current != proc
	if e.current == proc {
		e.current = nil
	}
	e.mu.Unlock()

	if stale {
		return
	}
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("ref", proc.ref).
			Strs("output", proc.output.Lines()).
			Msg("player exited with error")
	}
	if done != nil {
		done(err == nil)
	}
}

func (p *process) drain() {
	scanner := bufio.NewScanner(p.pty)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			p.output.Add(line)
		}
	}
}

func expandCommand(template []string, path string, opts PlayOptions) []string {
	volume := strconv.Itoa(int(clampVolume(opts.Volume)*100 + 0.5))
	rate := strconv.FormatFloat(normalizeRate(opts.Rate), 'f', 2, 64)
	replacer := strings.NewReplacer("{file}", path, "{volume}", volume, "{rate}", rate)

	args := make([]string, len(template))
	for i, arg := range template {
		args[i] = replacer.Replace(arg)
	}
	return args
}

// tail keeps the last lines written by a player for diagnostics.
type tail struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func newTail(max int) *tail {
	if max <= 0 {
		max = 1
	}
	return &tail{max: max}
}

func (t *tail) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if over := len(t.lines) - t.max; over > 0 {
		t.lines = append(t.lines[:0], t.lines[over:]...)
	}
}

func (t *tail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}
