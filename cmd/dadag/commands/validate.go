package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/docassemble-dag/pkg/parser"
	"github.com/l3aro/docassemble-dag/pkg/template"
	"github.com/l3aro/docassemble-dag/pkg/validate"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file|dir>...",
	Short: "Check the graph against policy rules",
	Long: `Builds the dependency graph and runs policy checks over it.
Available policies: ` + joinStrings(validate.PolicyNames()) + `.
By default every policy runs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policyNames, _ := cmd.Flags().GetStringSlice("policies")
		failOnError, _ := cmd.Flags().GetBool("fail-on-error")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		checkReconsider, _ := cmd.Flags().GetBool("reconsider")
		templatePaths, _ := cmd.Flags().GetStringSlice("templates")

		if len(policyNames) == 0 {
			policyNames = cfg.Policies
		}

		g, err := buildGraph(args, cfg.Recursive)
		if err != nil {
			return err
		}

		report := validate.NewReport(g, policyNames)

		if checkReconsider {
			directives, err := collectReconsiders(args, cfg.Recursive)
			if err != nil {
				return err
			}
			reconsidered := parser.ReconsideredVariables(directives)
			report.Findings = append(report.Findings, validate.ReconsiderBoundaries(g, reconsidered)...)
			report.Summary = validate.Summarize(report.Findings)
		}

		for _, path := range templatePaths {
			result := template.Validate(path, g)
			for _, name := range result.UndefinedVariables {
				report.Findings = append(report.Findings, validate.Finding{
					Rule:     "template_variables",
					Severity: validate.SeverityError,
					Message:  fmt.Sprintf("template %s references undefined variable %q", path, name),
					Node:     name,
				})
			}
			for _, name := range result.UndefinedObjects {
				report.Findings = append(report.Findings, validate.Finding{
					Rule:     "template_variables",
					Severity: validate.SeverityError,
					Message:  fmt.Sprintf("template %s references undefined object %q", path, name),
					Node:     name,
				})
			}
			report.Summary = validate.Summarize(report.Findings)
		}

		if jsonOutput {
			if err := printJSON(report); err != nil {
				return err
			}
		} else {
			printReport(report)
		}

		if failOnError && report.Summary.Errors > 0 {
			return fmt.Errorf("validation failed with %d error(s)", report.Summary.Errors)
		}
		return nil
	},
}

func printReport(report validate.Report) {
	if report.Summary.Total == 0 {
		fmt.Println("No policy violations found.")
		return
	}

	for _, f := range report.Findings {
		fmt.Printf("[%s] %s: %s\n", f.Severity, f.Rule, f.Message)
	}
	fmt.Printf("\n%d violation(s): %d error(s), %d warning(s), %d info\n",
		report.Summary.Total, report.Summary.Errors, report.Summary.Warnings, report.Summary.Info)
}

func joinStrings(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}

func init() {
	validateCmd.Flags().StringSlice("policies", nil, "Policies to run (default: all)")
	validateCmd.Flags().Bool("fail-on-error", false, "Exit nonzero when errors are found")
	validateCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	validateCmd.Flags().Bool("reconsider", false, "Warn about dependencies crossing reconsider boundaries")
	validateCmd.Flags().StringSlice("templates", nil, "Template files to validate against the graph")
}
