package cli

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Root     string
	Tool     string
	Manifest string
}

// listedCase is the JSON shape of one discovered case.
type listedCase struct {
	Label       string `json:"label"`
	Path        string `json:"path"`
	Tool        string `json:"tool"`
	Expectation string `json:"expectation"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered fixtures without running any tool",
		Long: `Discover and classify the corpus's fixtures, printing each case's
label, tool, and expectation in the order checks would run them.
Useful for verifying the naming conventions (or a manifest) classify
the corpus the way you intend before spending time on tool runs.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", ".", "corpus root directory")
	cmd.Flags().StringVar(&opts.Tool, "tool", "", "restrict to a single tool identifier")
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "explicit fixtures.yaml (bypasses naming heuristics)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	cases, err := discoverCases(opts.Root, opts.Tool, opts.Manifest, slog.Default())
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		listed := make([]listedCase, len(cases))
		for i, c := range cases {
			listed[i] = listedCase{
				Label:       c.Label,
				Path:        c.Path,
				Tool:        string(c.Tool),
				Expectation: c.Expect.String(),
			}
		}
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: listed})
	}

	w := cmd.OutOrStdout()
	if len(cases) == 0 {
		fmt.Fprintln(w, "No fixtures found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tTOOL\tEXPECT\tPATH")
	for _, c := range cases {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Label, c.Tool, c.Expect, c.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d fixture(s)\n", len(cases))
	return nil
}
