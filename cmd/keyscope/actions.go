package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/input"
)

type actionsOptions struct {
	filter string
	limit  int
}

func newActionsCmd(g *globalOptions) *cobra.Command {
	opts := &actionsOptions{}
	cmd := &cobra.Command{
		Use:   "actions <document>",
		Short: "List the actions of a document and their key sequences",
		Long: `The actions command activates a document and prints every action with
the sequences bound to it, as an application help screen would show them.

Use --filter to fuzzy-search action names, descriptions and sequences.

Example:
  keyscope actions keys.toml
  keyscope actions keys.toml --filter save
  keyscope actions keys.toml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActions(cmd, g, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.filter, "filter", "f", "", "Fuzzy filter for actions")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of actions to list (0 for all)")
	return cmd
}

func runActions(cmd *cobra.Command, g *globalOptions, opts *actionsOptions, path string) error {
	s, err := g.openSession(path, sessionOptions{logTo: cmd.ErrOrStderr()})
	if err != nil {
		return fmt.Errorf("%s: %s", path, describeError(err))
	}
	defer s.Close()

	matches := s.engine.SearchActions(opts.filter, opts.limit)
	descs := make([]input.ActionDescription, len(matches))
	for i, m := range matches {
		descs[i] = m.ActionDescription
	}

	out := cmd.OutOrStdout()
	if g.jsonOut {
		return printJSON(out, descs)
	}
	if len(descs) == 0 {
		fmt.Fprintln(out, "no actions")
		return nil
	}
	renderActions(out, descs, g.colorEnabled(out))
	return nil
}

// renderActions writes descs as a table, one row per sequence.
func renderActions(w io.Writer, descs []input.ActionDescription, color bool) {
	header := lipgloss.NewStyle()
	handled := lipgloss.NewStyle()
	unhandled := lipgloss.NewStyle()
	if color {
		header = header.Bold(true).Foreground(lipgloss.Color("12"))
		handled = handled.Foreground(lipgloss.Color("10"))
		unhandled = unhandled.Faint(true)
	}
	cell := lipgloss.NewStyle().Padding(0, 1)

	var rows [][]string
	var rowHandled []bool
	for _, d := range descs {
		label := d.Action
		if d.Name != "" {
			label += " (" + d.Name + ")"
		}
		for i, sd := range d.Sequences {
			if i > 0 {
				label = ""
			}
			rows = append(rows, []string{label, sd.Sequence, sd.Event.String(), sd.Scope, handledMark(d.Handled && i == 0)})
			rowHandled = append(rowHandled, d.Handled)
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ACTION", "SEQUENCE", "EVENT", "SCOPE", "HANDLED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header.Inherit(cell)
			case rowHandled[row]:
				return handled.Inherit(cell)
			default:
				return unhandled.Inherit(cell)
			}
		})
	fmt.Fprintln(w, t.Render())

	groups := make(map[string][]string)
	for _, d := range descs {
		if d.Group != "" {
			groups[d.Group] = append(groups[d.Group], d.Action)
		}
	}
	for _, d := range descs {
		if actions, ok := groups[d.Group]; ok {
			fmt.Fprintf(w, "%s: %s\n", d.Group, strings.Join(actions, ", "))
			delete(groups, d.Group)
		}
	}
}

func handledMark(ok bool) string {
	if ok {
		return "yes"
	}
	return ""
}
