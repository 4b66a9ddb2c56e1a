package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/macro"
	"github.com/dshills/keyscope/internal/script"
)

type replayOptions struct {
	speed float64
}

// firedAction is an action run while replaying.
type firedAction struct {
	Action    string `json:"action"`
	Scope     string `json:"scope"`
	Sequence  string `json:"sequence"`
	Event     string `json:"event"`
	Simulated bool   `json:"simulated,omitempty"`
	Message   string `json:"message,omitempty"`
}

func newReplayCmd(g *globalOptions) *cobra.Command {
	opts := &replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay <document> <session>",
		Short: "Feed a recorded session through a document",
		Long: `The replay command plays a session recorded with "keyscope run --record"
through a document and prints every action that fires. Handlers declared in
the document run; actions without one are only reported.

Example:
  keyscope replay keys.toml session.yaml
  keyscope replay keys.toml session.yaml --speed 1 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, g, opts, args[0], args[1])
		},
	}
	cmd.Flags().Float64Var(&opts.speed, "speed", 0, "Playback speed relative to the recording (0 replays at once)")
	return cmd
}

func runReplay(cmd *cobra.Command, g *globalOptions, opts *replayOptions, docPath, sessionPath string) error {
	rec, err := macro.Load(sessionPath)
	if err != nil {
		return fmt.Errorf("%s: %w", sessionPath, err)
	}

	var fired []firedAction
	s, err := g.openSession(docPath, sessionOptions{
		logTo: cmd.ErrOrStderr(),
		notify: func(n script.Notification) {
			fired = append(fired, firedAction{Action: n.Action, Scope: n.Scope, Message: n.Message})
		},
		fallback: func(string, string) input.Handler { return func(*input.Event) {} },
	})
	if err != nil {
		return fmt.Errorf("%s: %s", docPath, describeError(err))
	}
	defer s.Close()

	s.engine.Hooks().RegisterNamed(&input.FuncHook{
		PreActionFunc: func(ev *input.Event) bool {
			fired = append(fired, firedAction{
				Action:    ev.Action,
				Scope:     ev.Scope,
				Sequence:  ev.Binding.Sequence,
				Event:     ev.Transition.Type.String(),
				Simulated: ev.Simulated,
			})
			return false
		},
	}, "replay")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if _, err := macro.NewPlayer(s.engine).Play(ctx, rec, opts.speed); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	out := cmd.OutOrStdout()
	if g.jsonOut {
		if fired == nil {
			fired = []firedAction{}
		}
		return printJSON(out, fired)
	}
	for _, f := range fired {
		if f.Message != "" {
			fmt.Fprintf(out, "  %s/%s: %s\n", f.Scope, f.Action, f.Message)
			continue
		}
		sim := ""
		if f.Simulated {
			sim = " (simulated)"
		}
		fmt.Fprintf(out, "%s [%s] %s %s%s\n", f.Action, f.Scope, f.Event, f.Sequence, sim)
	}
	fmt.Fprintf(out, "%d steps, %d actions\n", len(rec.Steps), countActions(fired))
	return nil
}

func countActions(fired []firedAction) int {
	n := 0
	for _, f := range fired {
		if f.Message == "" {
			n++
		}
	}
	return n
}
