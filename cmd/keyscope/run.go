package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/backend"
	"github.com/dshills/keyscope/internal/config"
	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/macro"
	"github.com/dshills/keyscope/internal/script"
)

const maxRunLines = 500

type runOptions struct {
	record string
}

// reloadRequest is posted to the event loop when the document changes.
type reloadRequest struct{}

func newRunCmd(g *globalOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <document>",
		Short: "Match live keyboard input against a document",
		Long: `The run command takes over the terminal, feeds every key through the
engine and shows the actions that fire. The document is reloaded whenever it
changes on disk. Press control+c to quit.

Logs go to --log-file only, since the terminal is in use.

Example:
  keyscope run keys.toml
  keyscope run keys.toml --record session.yaml --log-file keyscope.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, g, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.record, "record", "", "Save the transitions of the run to this session file")
	return cmd
}

// runner owns the terminal and the active session. Everything but the
// watcher callback runs on the event loop goroutine.
type runner struct {
	g    *globalOptions
	path string
	term *backend.Terminal
	sess *session
	rec  *macro.Recorder

	lines  []string
	status string
}

func runRun(cmd *cobra.Command, g *globalOptions, opts *runOptions, path string) error {
	r := &runner{g: g, path: path, rec: macro.NewRecorder()}

	sess, err := r.open()
	if err != nil {
		return fmt.Errorf("%s: %s", path, describeError(err))
	}
	r.sess = sess
	defer func() { r.sess.Close() }()

	term, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("creating terminal: %w", err)
	}
	if err := term.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	r.term = term

	watcher, err := config.NewWatcher(func(string) {
		_ = term.Interrupt(reloadRequest{})
	}, config.WithLogger(sess.logger))
	if err == nil {
		defer watcher.Close()
		err = watcher.Add(path)
	}
	if err != nil {
		r.status = "live reload unavailable: " + err.Error()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		if sig, ok := <-signals; ok {
			_ = term.Interrupt(sig)
		}
	}()

	if opts.record != "" {
		r.rec.Start()
	}
	r.loop()
	term.Shutdown()

	if opts.record != "" {
		rec := r.rec.Stop()
		if err := macro.Save(rec, opts.record); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded %d transitions to %s\n", len(rec.Steps), opts.record)
	}
	return nil
}

// open activates the document on a new engine wired to the runner.
func (r *runner) open() (*session, error) {
	s, err := r.g.openSession(r.path, sessionOptions{
		notify: func(n script.Notification) {
			r.println(fmt.Sprintf("  %s/%s: %s", n.Scope, n.Action, n.Message))
		},
		fallback: func(string, string) input.Handler { return func(*input.Event) {} },
	})
	if err != nil {
		return nil, err
	}

	s.engine.Hooks().RegisterNamed(r.rec, "record")
	s.engine.Hooks().RegisterNamed(&input.FuncHook{
		PreActionFunc: func(ev *input.Event) bool {
			line := fmt.Sprintf("%-20s %-10s %-8s %s", ev.Action, ev.Scope, ev.Transition.Type, ev.Binding.Sequence)
			if ev.Simulated {
				line += " (simulated)"
			}
			r.println(line)
			return false
		},
	}, "report")
	return s, nil
}

func (r *runner) loop() {
	r.draw()
	for {
		switch ev := r.term.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				return
			}
			for _, t := range backend.Translate(ev) {
				r.sess.engine.NotifyKeyTransition(t)
			}
		case *tcell.EventInterrupt:
			switch ev.Data().(type) {
			case reloadRequest:
				r.reload()
			case os.Signal:
				return
			}
		}
		r.draw()
	}
}

func (r *runner) reload() {
	s, err := r.open()
	if err != nil {
		r.status = "reload failed: " + describeError(err)
		r.sess.logger.Warn("reload failed", "path", r.path, "error", err)
		return
	}
	r.sess.Close()
	r.sess = s
	r.status = "reloaded"
	r.println("-- reloaded " + r.path)
}

func (r *runner) println(line string) {
	r.lines = append(r.lines, line)
	if len(r.lines) > maxRunLines {
		r.lines = r.lines[len(r.lines)-maxRunLines:]
	}
}

func (r *runner) draw() {
	r.term.Clear()
	w, h := r.term.Size()
	bold := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Dim(true)

	scopes := r.sess.engine.Scopes()
	r.term.DrawText(0, 0, "keyscope "+r.path, bold)
	r.term.DrawText(0, 1, "scopes (innermost first): "+strings.Join(scopes, ", "), dim)

	m := r.sess.engine.Metrics().Snapshot()
	stats := fmt.Sprintf("transitions %d  actions %d  simulated %d", m.TransitionsTotal, m.HandlersFired, m.SimulatedEvents)
	if r.rec.IsRecording() {
		stats += fmt.Sprintf("  recording %d", r.rec.Len())
	}
	if r.status != "" {
		stats += "  " + r.status
	}
	r.term.DrawText(0, 2, stats, dim)

	top, bottom := 4, h-2
	if rows := bottom - top; rows > 0 {
		lines := r.lines[max(len(r.lines)-rows, 0):]
		for i, line := range lines {
			r.term.DrawText(0, top+i, line, tcell.StyleDefault)
		}
	}
	r.term.DrawText(0, h-1, strings.Repeat(" ", w), tcell.StyleDefault.Reverse(true))
	r.term.DrawText(0, h-1, "control+c quit", tcell.StyleDefault.Reverse(true))
	r.term.Show()
}
