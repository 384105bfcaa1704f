package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-wiring/framework/inspect"
)

func newLintCmd(o *options) *cobra.Command {
	var (
		allowOverrides bool
		strict         bool
		noColor        bool
		format         string
	)

	c := &cobra.Command{
		Use:   "lint FILE...",
		Short: "Check manifest files for wiring errors",
		Long: `Load one or more manifest files (.hcl, .yaml, .yml or .json), replay them
into a registry with placeholder factories, and compile it.

Every problem is reported at once. The exit status is 1 when any is found.

Examples:
  # Lint a single file
  wiring lint services.yaml

  # Later files override earlier ones
  wiring lint base.hcl local.hcl --allow-overrides

  # Also check for dependency cycles and id collisions
  wiring lint services.yaml --strict

  # Machine-readable output
  wiring lint services.yaml --format json | jq '.errors[].kind'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q: want text or json", format)
			}

			cfg := *o.cfg
			cfg.Registry.AllowOverrides = cfg.Registry.AllowOverrides || allowOverrides
			cfg.Registry.Strict = cfg.Registry.Strict || strict

			r, err := o.loadRegistry(&cfg, args)
			if err == nil {
				_, err = r.CompileContext(cmd.Context())
			}
			rep := inspect.NewReport(err)

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				printReport(out, rep, args, noColor)
			}

			if !rep.Valid {
				return ErrDiagnostics
			}
			return nil
		},
	}

	c.Flags().BoolVar(&allowOverrides, "allow-overrides", false, "do not report definitions that replace earlier ones")
	c.Flags().BoolVar(&strict, "strict", false, "also report dependency cycles and id collisions")
	c.Flags().BoolVar(&noColor, "no-color", false, "disable styled output")
	c.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	return c
}

// printReport writes rep as styled text. Styles are dropped when out is
// not a terminal or noColor is set.
func printReport(out io.Writer, rep inspect.Report, files []string, noColor bool) {
	r := lipgloss.NewRenderer(out)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	okStyle := r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errStyle := r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	kindStyle := r.NewStyle().Foreground(lipgloss.Color("11"))
	subjectStyle := r.NewStyle().Bold(true)
	faint := r.NewStyle().Faint(true)

	if rep.Valid {
		fmt.Fprintln(out, okStyle.Render("ok"), faint.Render(strings.Join(files, " ")))
		return
	}

	for _, d := range rep.Errors {
		line := kindStyle.Render("[" + string(d.Kind) + "]")
		if d.Subject != "" {
			line += " " + subjectStyle.Render(d.Subject)
		}
		fmt.Fprintln(out, line)
		for _, msg := range strings.Split(d.Message, "\n") {
			fmt.Fprintln(out, "    "+msg)
		}
	}

	noun := "problems"
	if len(rep.Errors) == 1 {
		noun = "problem"
	}
	fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("%d %s", len(rep.Errors), noun)))
}
