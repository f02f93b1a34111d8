package main

import (
	"fmt"
	"os"
	"strings"

	"inspector/internal/core/app"
	"inspector/internal/core/errors"
	"inspector/internal/core/ports"
	"inspector/internal/shared/version"
	"inspector/internal/ui/report"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check every source file under the given roots",
	Long: `Check parses every matching file, registers its namespace and imports and
indexes each class declaration. Files with syntax errors or classes inside an
unnamed namespace block are reported and do not stop the run. Use
--format sarif to emit a SARIF 2.1.0 report for code scanning tools.

Exit codes:
  0  All files checked cleanly
  1  One or more files failed
  2  Bad invocation or the run was aborted`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), args)
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.app.AnalysisService().Check(cmd.Context(), ports.CheckRequest{})
		if err != nil {
			return err
		}
		if err := writeReport(cmd, s.app.Paths.ProjectRoot, res); err != nil {
			return err
		}
		if res.Failed > 0 {
			return exitError{code: 1}
		}
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <file> <name>",
	Short: "Resolve a class name as written in a file",
	Long: `Resolve prints the fully-qualified form of name in the context of file's
namespace and use declarations. No class checks are run.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer s.Close()

		fqn, err := s.app.AnalysisService().Resolve(cmd.Context(), absPath(args[0]), args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), fqn)
		return nil
	},
}

var classesCmd = &cobra.Command{
	Use:   "classes [fqn]",
	Short: "List the classes declared in the project",
	Long: `Classes checks the project and prints every indexed class declaration, or
only the declarations of fqn when it is given. Requires db.enabled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer s.Close()

		svc := s.app.AnalysisService()
		if _, err := svc.Check(cmd.Context(), ports.CheckRequest{}); err != nil {
			return err
		}
		var fqn string
		if len(args) == 1 {
			fqn = args[0]
		}
		refs, err := svc.Classes(cmd.Context(), fqn)
		if err != nil {
			return err
		}
		if fqn != "" && len(refs) == 0 {
			return exitError{code: 1}
		}
		out := cmd.OutOrStdout()
		for _, ref := range refs {
			line := fmt.Sprintf("%s %s:%d", ref.FQN, ref.File, ref.Line)
			if ref.Parent != "" {
				line += " extends " + ref.Parent
			}
			if len(ref.Interfaces) > 0 {
				line += " implements " + strings.Join(ref.Interfaces, ", ")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk parse cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired and least recently used cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer s.Close()

		if s.app.Paths.CacheDir == "" {
			fmt.Fprintln(os.Stderr, "parse cache is disabled")
			return nil
		}
		res, err := s.app.AnalysisService().PruneCache(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, removed %d, kept %d\n", res.Scanned, res.Removed, res.Kept)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the inspector version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "inspector v%s\n", version.Version)
	},
}

var (
	checkFormat string
	checkOutput string
)

func writeReport(cmd *cobra.Command, projectRoot string, res ports.CheckResult) error {
	switch checkFormat {
	case "text":
		app.PrintSummary(cmd.OutOrStdout(), res)
		return nil
	case "sarif":
		data, err := report.GenerateSARIF(projectRoot, res)
		if err != nil {
			return fmt.Errorf("generate sarif: %w", err)
		}
		if checkOutput == "" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		if err := os.WriteFile(checkOutput, data, 0o644); err != nil {
			return fmt.Errorf("write sarif report: %w", err)
		}
		app.PrintSummary(cmd.OutOrStdout(), res)
		return nil
	default:
		return errors.New(errors.CodeNotSupported, fmt.Sprintf("unknown format %q (want text or sarif)", checkFormat))
	}
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "report format: text or sarif")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "write the sarif report to a file instead of stdout")

	cacheCmd.AddCommand(cachePruneCmd)
}
