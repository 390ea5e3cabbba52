package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

// inputFlags are shared by every command that lays out a people file.
type inputFlags struct {
	focus     string
	collapsed []string
	noCache   bool
	refresh   bool
	settings  settingsFlags
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.focus, "focus", "", "focus person ID (default: first person)")
	cmd.Flags().StringSliceVar(&f.collapsed, "collapse", nil, "union keys to collapse, e.g. p1:p2 or p1:single")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if cached")
	f.settings.register(cmd)
}

// options loads input and builds pipeline options from the config file
// and flags.
func (c *CLI) options(cmd *cobra.Command, input string, f *inputFlags) (pipeline.Options, error) {
	people, err := graph.ReadPeopleFile(input)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		People:       people,
		FocusID:      f.focus,
		Settings:     f.settings.apply(cmd, c.config.Settings),
		CollapsedIDs: f.collapsed,
		Refresh:      f.refresh,
	}, nil
}

// layoutCommand creates the layout command for computing chart geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  inputFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [people.json|people.yaml]",
		Short: "Compute chart geometry from a people file",
		Long: `Compute chart geometry from a people file.

The layout command reads a people file (JSON or YAML) and computes the
positions of every node, link, collapse point and fan arc for the selected
chart. The output is a layout.json file (same format as 'render -f json').

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout computes the layout and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", chartName(opts)))
	spinner.Start()

	res, cacheHit, err := runner.LayoutWithCacheInfo(ctx, &opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := graph.WriteResultFile(res, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(res.Nodes), len(res.Links), len(res.FanArcs), cacheHit)
	if res.Truncated {
		printWarning("Chart truncated at %d generations", opts.Settings.GenerationLimit)
	}
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}

// chartName returns the chart type for display, defaulting when unset.
func chartName(opts pipeline.Options) string {
	s := opts.Settings
	s.Normalize()
	return string(s.ChartType)
}
