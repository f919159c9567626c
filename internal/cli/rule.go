package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/tui"
)

// NewRuleCmd creates the rule command printing the text of one rule.
func NewRuleCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "rule <citation>",
		Short: "Print the rendered text of a rule",
		Example: `  # Render rule 761-1.1
  regdash rule 761-1.1

  # Print the markdown source
  regdash rule 761-1.1 --raw`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := mustApp(cmd)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			text, err := client.RuleText(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if text.Empty() {
				_, err = fmt.Fprintln(out, engine.NoText)
				return err
			}
			if raw {
				_, err = fmt.Fprintln(out, strings.TrimRight(text.Content, "\n"))
				return err
			}

			styled := tui.DetectOutputMode(false, false, false) != tui.OutputModePlain
			r, err := tui.NewMarkdownRenderer(0, styled)
			if err != nil {
				return fmt.Errorf("creating markdown renderer: %w", err)
			}
			_, err = fmt.Fprintln(out, strings.Join(tui.MarkdownLines(r)(text.Content), "\n"))
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown source instead of rendering it")
	return cmd
}
