package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/swipedeck/internal/bridge"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/engine"
	"github.com/roach88/swipedeck/internal/gesture"
	"github.com/roach88/swipedeck/internal/swipe"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Source SourceFlags
	Linger time.Duration
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Drive a deck from commands on stdin",
		Long: `Start a controller on the configured backend and read commands from
stdin, one per line. Every state change is printed.

Commands:
  like | accept | right        accept the top card
  nope | reject | left         reject the top card
  undo | rewind                undo the last decision
  drag X Y                     move the top card
  release X Y [VX]             end a drag at predicted end (X, Y), velocity VX
  show                         print the current state
  reload                       restart the subscription
  wait DURATION                pause reading, e.g. wait 500ms
  quit                         stop

Examples:
  swipedeck play
  swipedeck play --fixture deck.yaml --format json < script.txt
  swipedeck play --source sqlite --db ./deck.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	opts.Source.register(cmd)
	cmd.Flags().StringVar(&opts.Source.Fixture, "fixture", "", "seed file for the memory backend (.yaml, .json or .cue)")
	cmd.Flags().DurationVar(&opts.Linger, "linger", 0, "keep running this long after input ends")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if err := opts.Source.apply(&cfg); err != nil {
		return err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	// ctx ends input on Ctrl-C. The engine outlives it and ends with Stop,
	// so the controller is always closed on the loop.
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := openSource(ctx, cfg, log)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBackend, err)
	}
	defer closeSource(src, log)

	eng := engine.New(engine.WithLogger(log))
	var loop errgroup.Group
	loop.Go(func() error { return eng.Run(context.WithoutCancel(parent)) })

	ctrl := swipe.New(src, eng, swipe.WithOptions(cfg.Swipe), swipe.WithLogger(log))
	p := &player{out: formatter}
	if err := eng.Do(ctx, func() {
		ctrl.Subscribe(p.snapshot)
		ctrl.SubscribeErrors(p.failure)
		ctrl.Load()
	}); err != nil {
		eng.Stop()
		_ = loop.Wait()
		return WrapExitError(ExitFailure, "engine did not start", err)
	}
	formatter.VerboseLog("playing on %s backend", cfg.Source.Kind)

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(cmd.InOrStdin(), done)
	interrupted := playLoop(ctx, eng, ctrl, p, lines)
	if interrupted {
		// Restore default signal handling: a second Ctrl-C kills the process.
		stop()
		formatter.VerboseLog("interrupted")
	} else {
		sleep(ctx, opts.Linger)
	}

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(parent), closeTimeout)
	defer cancel()
	if err := eng.Do(closeCtx, ctrl.Close); err != nil {
		log.Warn().Err(err).Msg("controller close did not finish")
	}
	eng.Stop()
	if err := loop.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "engine error", err)
	}
	if interrupted {
		return nil
	}
	select {
	case err := <-readErr:
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read input", err)
		}
	default:
	}
	return nil
}

const closeTimeout = 2 * time.Second

// readLines scans r on its own goroutine so a blocked read never holds up
// shutdown. lines closes at EOF; readErr then carries the scanner error.
// The goroutine gives up once done is closed and its current read returns.
func readLines(r io.Reader, done <-chan struct{}) (lines <-chan string, readErr <-chan error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return out, errc
}

// playLoop applies input lines until quit, EOF or ctx ends. It reports
// whether ctx ended it.
func playLoop(ctx context.Context, eng *engine.Engine, ctrl *swipe.Controller, p *player, lines <-chan string) bool {
	for {
		var line string
		select {
		case <-ctx.Done():
			return true
		case l, ok := <-lines:
			if !ok {
				return false
			}
			line = strings.TrimSpace(l)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pc, perr := parsePlayCommand(line)
		if perr != nil {
			if err := eng.Do(ctx, func() { p.inputError(perr) }); err != nil {
				return ctx.Err() != nil
			}
			continue
		}
		switch pc.name {
		case "quit":
			return false
		case "wait":
			sleep(ctx, pc.wait)
			continue
		}
		if err := eng.Do(ctx, func() { pc.apply(ctrl, p) }); err != nil {
			return ctx.Err() != nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// playCommand is one parsed input line.
type playCommand struct {
	name     string
	kind     decision.Kind
	vec      gesture.Vector
	velocity float64
	wait     time.Duration
}

func parsePlayCommand(line string) (playCommand, error) {
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]

	arity := func(lo, hi int) error {
		if len(args) < lo || len(args) > hi {
			return fmt.Errorf("%s: want %d to %d arguments, got %d", name, lo, hi, len(args))
		}
		return nil
	}

	switch name {
	case "like", "accept", "right":
		return playCommand{name: "decide", kind: decision.KindAccept}, arity(0, 0)
	case "nope", "reject", "left":
		return playCommand{name: "decide", kind: decision.KindReject}, arity(0, 0)
	case "undo", "rewind":
		return playCommand{name: "undo"}, arity(0, 0)
	case "show", "reload", "quit":
		return playCommand{name: name}, arity(0, 0)
	case "exit":
		return playCommand{name: "quit"}, arity(0, 0)
	case "wait":
		if err := arity(1, 1); err != nil {
			return playCommand{}, err
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return playCommand{}, fmt.Errorf("wait: %w", err)
		}
		return playCommand{name: name, wait: d}, nil
	case "drag", "release":
		maxArgs := 2
		if name == "release" {
			maxArgs = 3
		}
		if err := arity(2, maxArgs); err != nil {
			return playCommand{}, err
		}
		nums, err := parseFloats(args)
		if err != nil {
			return playCommand{}, fmt.Errorf("%s: %w", name, err)
		}
		pc := playCommand{name: name, vec: gesture.Vector{X: nums[0], Y: nums[1]}}
		if len(nums) == 3 {
			pc.velocity = nums[2]
		}
		return pc, nil
	}
	return playCommand{}, fmt.Errorf("unknown command %q", fields[0])
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = f
	}
	return out, nil
}

// apply runs the command. Must be called on the engine loop.
func (pc playCommand) apply(ctrl *swipe.Controller, p *player) {
	switch pc.name {
	case "decide":
		ctrl.Decide(pc.kind)
	case "undo":
		ctrl.Undo()
	case "drag":
		ctrl.DragChanged(pc.vec)
	case "release":
		ctrl.DragEnded(gesture.Sample{Translation: pc.vec, PredictedEnd: pc.vec, VelocityX: pc.velocity})
	case "reload":
		ctrl.Load()
	case "show":
		p.snapshot(ctrl.Snapshot())
	}
}

// player prints controller output. Its methods run on the engine loop.
type player struct {
	out *OutputFormatter
}

type snapshotView struct {
	Version    uint64         `json:"version"`
	Cursor     int            `json:"cursor"`
	Len        int            `json:"len"`
	Current    string         `json:"current,omitempty"`
	Name       string         `json:"name,omitempty"`
	Visible    []string       `json:"visible"`
	Phase      string         `json:"phase"`
	Transition string         `json:"transition"`
	Offset     gesture.Vector `json:"offset"`
	Rotation   float64        `json:"rotation"`
	LikeCount  int            `json:"like_count"`
	Exhausted  bool           `json:"exhausted"`
	CanUndo    bool           `json:"can_undo"`
}

type playEvent struct {
	Event    string         `json:"event"`
	Snapshot *snapshotView  `json:"snapshot,omitempty"`
	Error    *ResponseError `json:"error,omitempty"`
}

func viewOf(s swipe.Snapshot) *snapshotView {
	v := &snapshotView{
		Version:    s.Version,
		Cursor:     s.Cursor,
		Len:        s.Len,
		Visible:    make([]string, len(s.Visible)),
		Phase:      s.Phase.String(),
		Transition: s.Transition.String(),
		Offset:     s.TopOffset,
		Rotation:   s.Rotation,
		LikeCount:  s.LikeCount,
		Exhausted:  s.Exhausted,
		CanUndo:    s.CanUndo,
	}
	for i, r := range s.Visible {
		v.Visible[i] = r.ID
	}
	if r, ok := s.Current(); ok {
		v.Current, v.Name = r.ID, r.Name
	}
	return v
}

func (p *player) snapshot(s swipe.Snapshot) {
	v := viewOf(s)
	if p.out.JSON() {
		p.emit(playEvent{Event: "snapshot", Snapshot: v})
		return
	}
	top := "(empty)"
	if v.Current != "" {
		top = fmt.Sprintf("%d/%d %s", v.Cursor+1, v.Len, v.Current)
		if v.Name != "" {
			top += " " + v.Name
		}
	}
	undo := "no"
	if v.CanUndo {
		undo = "yes"
	}
	fmt.Fprintf(p.out.Writer, "v%d | %s | %s (%s) | likes=%d undo=%s\n",
		v.Version, top, v.Phase, v.Transition, v.LikeCount, undo)
}

func (p *player) failure(err error) {
	code := string(bridge.CodeOf(err))
	if code == "" {
		code = ErrCodeBackend
	}
	p.report(code, err)
}

func (p *player) inputError(err error) {
	p.report(ErrCodeInput, err)
}

func (p *player) report(code string, err error) {
	if p.out.JSON() {
		p.emit(playEvent{Event: "error", Error: &ResponseError{Code: code, Message: err.Error()}})
		return
	}
	fmt.Fprintf(p.out.Writer, "error [%s]: %v\n", code, err)
}

func (p *player) emit(ev playEvent) {
	_ = json.NewEncoder(p.out.Writer).Encode(ev)
}
