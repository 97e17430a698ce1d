package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/codeoverview/internal/client"
	"github.com/dshills/codeoverview/internal/config"
	"github.com/dshills/codeoverview/internal/di"
	"github.com/dshills/codeoverview/internal/gitctx"
	"github.com/dshills/codeoverview/internal/output"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Review flags
var (
	flagFile     string
	flagPrompt   string
	flagSource   string
	flagEndpoint string
	flagFormat   string
	flagOut      string
	flagWrap     uint
	flagNoColor  bool
	flagNoRedact bool
	flagStaged   bool
	flagUnstaged bool
	flagRange    string
	flagExclude  string
)

var rootCmd = &cobra.Command{
	Use:   "cf-ai-codereview",
	Short: "AI overview of a code diff",
	Long: "cf-ai-codereview sends a diff, optionally with the files of a source directory as context, " +
		"to the generation endpoint and prints the overview together with a link to discuss it.",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		exitCode = runReview(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
		return nil
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitFailure
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagEndpoint != "" {
		m["endpoints.generate"] = flagEndpoint
	}
	return m
}

func useColor(w io.Writer) bool {
	if flagNoColor || flagOut != "" || color.NoColor {
		return false
	}
	return w == os.Stdout || w == os.Stderr
}

func splitComma(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// readDiff returns the diff named by -f, or takes one from git with --staged,
// --unstaged or --range. Exactly one source must be given.
func readDiff(ctx context.Context) (string, error) {
	sources := 0
	for _, set := range []bool{flagFile != "", flagStaged, flagUnstaged, flagRange != ""} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return "", errors.New("a diff is required (-f, --staged, --unstaged or --range)")
	case sources > 1:
		return "", errors.New("-f, --staged, --unstaged and --range are mutually exclusive")
	}

	if flagFile != "" {
		data, err := os.ReadFile(flagFile)
		if err != nil {
			return "", fmt.Errorf("reading diff: %w", err)
		}
		return string(data), nil
	}

	opts := gitctx.Options{Exclude: splitComma(flagExclude)}
	var (
		res gitctx.Result
		err error
	)
	switch {
	case flagStaged:
		res, err = gitctx.Staged(ctx, opts)
	case flagUnstaged:
		res, err = gitctx.Unstaged(ctx, opts)
	default:
		res, err = gitctx.Range(ctx, flagRange, opts)
	}
	if err != nil {
		return "", err
	}
	return res.Diff, nil
}

// runReview submits the diff and writes the overview.
func runReview(ctx context.Context, stdout, stderr io.Writer, cfg config.Config) int {
	errColor := useColor(stderr)
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(stderr, "WARNING: secret redaction is disabled")
	}

	diff, err := readDiff(ctx)
	if err != nil {
		output.Errorf(stderr, errColor, "%v", err)
		return ExitFailure
	}

	writer, err := output.GetWriter(cfg.Format)
	if err != nil {
		output.Errorf(stderr, errColor, "%v", err)
		return ExitFailure
	}
	if tw, ok := writer.(*output.TextWriter); ok {
		tw.Width = flagWrap
		tw.Color = useColor(stdout)
	}

	err = di.NewRuntime(cfg).Invoke(func(i di.Injector) error {
		logger, err := di.ResolveLogger(i)
		if err != nil {
			return err
		}
		c, err := di.ResolveClient(i)
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"endpoint":   cfg.Endpoints.Generate,
			"diff_bytes": len(diff),
			"source":     flagSource,
		}).Debug("requesting overview")

		res, err := c.Review(ctx, client.ReviewRequest{
			Diff:   diff,
			Prompt: flagPrompt,
			Source: flagSource,
		})
		if err != nil {
			return err
		}
		logger.WithField("overview_id", res.OverviewID).Debug("overview received")

		report := output.Report{
			Overview:   res.Overview,
			OverviewID: res.OverviewID,
			URL:        client.ViewerURL(cfg.Endpoints.Viewer, res.OverviewID),
		}
		if err := output.WriteReport(report, writer, flagOut, stdout); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	})
	if err != nil {
		output.Errorf(stderr, errColor, "%v", err)
		return ExitFailure
	}
	return ExitSuccess
}

func newVersionCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print " + name + " version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", name, version)
		},
	}
}

func init() {
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Diff file to review")
	rootCmd.Flags().StringVarP(&flagPrompt, "prompt", "p", "", "Instruction for the model (default: summarize the changes)")
	rootCmd.Flags().StringVarP(&flagSource, "source", "s", "", "Directory whose files are sent as additional context")
	rootCmd.Flags().BoolVar(&flagStaged, "staged", false, "Review staged changes instead of a diff file")
	rootCmd.Flags().BoolVar(&flagUnstaged, "unstaged", false, "Review working tree changes not yet staged")
	rootCmd.Flags().StringVar(&flagRange, "range", "", "Review a revision range (e.g. origin/main...HEAD) instead of a diff file")
	rootCmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs from git diffs (comma-separated)")
	rootCmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "Generation endpoint URL")
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json)")
	rootCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	rootCmd.Flags().UintVar(&flagWrap, "wrap", 0, "Wrap the overview at this many columns")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Upload the diff and context unchanged. By default secrets are masked and redacted paths are replaced by a placeholder before upload")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(newVersionCmd("cf-ai-codereview"))
}
