package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/check"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/graph"
)

// checkCommand creates the consistency check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		asJSON  bool
		strict  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "check [people.json|people.yaml]",
		Short: "Report circular ancestry and implausible dates",
		Long: `Report circular ancestry and implausible dates.

Issues are graded as errors (circular references, death before birth,
child born before a parent) or warnings (parent age outside 14..100,
birth long after a parent's death, lifespans over 120 years).

With --strict the command fails when any error-level issue is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			people, err := graph.ReadPeopleFile(args[0])
			if err != nil {
				return err
			}
			return c.runCheck(cmd.Context(), people, asJSON, strict, noCache)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero if errors are found")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, people family.People, asJSON, strict, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	report, err := runner.Check(ctx, people)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(people, report)
	}

	if n := report.CountBySeverity(check.SeverityError); strict && n > 0 {
		return errors.New(errors.ErrCodeCheckFailed, "%d consistency errors", n)
	}
	return nil
}

// printReport prints the issues as a table, one row per issue.
func printReport(people family.People, report check.Report) {
	if report.Count() == 0 {
		printSuccess("No issues in %d people", len(people))
		return
	}

	fmt.Println(reportTable(people, report).Render())
	printNewline()

	errs := report.CountBySeverity(check.SeverityError)
	warns := report.CountBySeverity(check.SeverityWarning)
	if errs > 0 {
		printError("%d errors, %d warnings", errs, warns)
	} else {
		printWarning("%d warnings", warns)
	}
}

func reportTable(people family.People, report check.Report) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	var rows [][]string
	var severities []check.Severity
	for _, id := range report.PersonIDs() {
		name := id
		if p := people.Get(id); p != nil {
			name = p.DisplayName()
		}
		for _, issue := range report[id] {
			rows = append(rows, []string{name, string(issue.Severity), string(issue.Kind), issue.Details})
			severities = append(severities, issue.Severity)
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Person", "Severity", "Kind", "Details").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col != 1 || row < 0 || row >= len(severities) {
				return base
			}
			if severities[row] == check.SeverityError {
				return base.Foreground(colorRed)
			}
			return base.Foreground(colorYellow)
		})
}
