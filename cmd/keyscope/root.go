package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/keyscope/internal/config"
	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/logging"
	"github.com/dshills/keyscope/internal/script"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	logLevel string
	logFile  string
	jsonOut  bool
	noColor  bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "keyscope",
		Short: "Check and exercise scoped key binding documents",
		Long: `keyscope loads key map documents (TOML or YAML) describing nested
scopes of key bindings, and matches keyboard input against them the way an
application would: nearest scope first, with combinations, sequences and
simulated events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the document")
	root.PersistentFlags().StringVar(&g.logFile, "log-file", "", "Write logs to this file")
	root.PersistentFlags().BoolVar(&g.jsonOut, "json", false, "Output in JSON format")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newCheckCmd(g),
		newActionsCmd(g),
		newRunCmd(g),
		newReplayCmd(g),
		newVersionCmd(),
	)
	return root
}

func execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// colorEnabled reports whether styled output should be written to w.
func (g *globalOptions) colorEnabled(w io.Writer) bool {
	if g.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// session is an engine with a document's scopes activated.
type session struct {
	doc      *config.Document
	engine   *input.Engine
	scripts  *script.Runtime
	logger   *slog.Logger
	scopeIDs []string
	closeLog func() error
}

type sessionOptions struct {
	// logTo receives logs when no log file is given; nil discards them.
	logTo io.Writer

	// notify receives notify messages of Lua handlers.
	notify func(script.Notification)

	// fallback handles declared actions without a handler source.
	fallback config.DefaultHandler
}

// openSession loads the document at path and activates it on a new engine.
func (g *globalOptions) openSession(path string, opts sessionOptions) (*session, error) {
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{
		Level: cmp.Or(g.logLevel, doc.Options.LogLevel),
		File:  g.logFile,
	}
	if opts.logTo != nil {
		logOpts.Writer = opts.logTo
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	cfg, err := doc.Options.EngineConfig(logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	s := &session{
		doc:      doc,
		engine:   input.New(cfg),
		scripts:  script.NewRuntime(script.WithLogger(logger), script.WithNotify(opts.notify)),
		logger:   logger,
		closeLog: closeLog,
	}
	s.scopeIDs, err = doc.ActivateWithDefault(s.engine, s.scripts.Compile, opts.fallback)
	if err != nil {
		s.Close()
		return nil, err
	}
	logger.Info("document loaded", "path", doc.Path, "scopes", len(s.scopeIDs))
	return s, nil
}

func (s *session) Close() {
	_ = s.engine.Close()
	_ = s.scripts.Close()
	_ = s.closeLog()
}
