package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/input/key"
)

// errInvalid marks a document that failed validation; the details have
// already been printed.
var errInvalid = errors.New("document is invalid")

type checkResult struct {
	File    string `json:"file"`
	Valid   bool   `json:"valid"`
	Scopes  int    `json:"scopes"`
	Actions int    `json:"actions"`
	Handled int    `json:"handled"`
	Error   string `json:"error,omitempty"`
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <document>",
		Short: "Validate a key map document",
		Long: `The check command loads a document, compiles every key sequence and
Lua handler, and activates its scopes on a fresh engine.

Example:
  keyscope check keys.toml
  keyscope check keys.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, g, args[0])
		},
	}
}

func runCheck(cmd *cobra.Command, g *globalOptions, path string) error {
	out := cmd.OutOrStdout()
	res := checkResult{File: path}

	s, err := g.openSession(path, sessionOptions{logTo: cmd.ErrOrStderr()})
	if err == nil {
		defer s.Close()
		res.Valid = true
		res.Scopes = len(s.scopeIDs)
		for _, d := range s.engine.ApplicationKeyMap() {
			res.Actions++
			if d.Handled {
				res.Handled++
			}
		}
	} else {
		res.Error = describeError(err)
	}

	if g.jsonOut {
		if err := printJSON(out, res); err != nil {
			return err
		}
	} else if res.Valid {
		fmt.Fprintf(out, "%s: ok (%d scopes, %d actions, %d handled)\n", path, res.Scopes, res.Actions, res.Handled)
	} else {
		fmt.Fprintf(out, "%s: %s\n", path, res.Error)
	}

	if !res.Valid {
		return errInvalid
	}
	return nil
}

// describeError turns a load error into a message for users.
func describeError(err error) string {
	if errors.Is(err, key.ErrInvalidKeyName) {
		return fmt.Sprintf("invalid key name: %v", err)
	}
	return err.Error()
}
