package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/codeoverview/internal/config"
	"github.com/dshills/codeoverview/internal/di"
	"github.com/dshills/codeoverview/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Generation providers and models",
}

type modelInfo struct {
	Provider string
	Models   []string
}

var knownModels = []modelInfo{
	{
		Provider: "workersai",
		Models: []string{
			providers.DefaultModel,
			"@cf/meta/llama-3.3-70b-instruct-fp8-fast",
			"@cf/mistral/mistral-7b-instruct-v0.2",
			"@cf/qwen/qwen2.5-coder-32b-instruct",
		},
	},
	{
		Provider: "anthropic",
		Models: []string{
			"claude-sonnet-4-5",
			"claude-haiku-4-5",
		},
	},
	{
		Provider: "openai",
		Models: []string{
			"gpt-4.1",
			"gpt-4.1-mini",
			"o3-mini",
		},
	},
	{
		Provider: "gemini",
		Models: []string{
			"gemini-2.5-flash",
			"gemini-2.5-pro",
		},
	},
	{
		Provider: "ollama",
		Models: []string{
			"llama3.1",
			"qwen2.5-coder",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, info := range knownModels {
			fmt.Fprintf(out, "%s:\n", info.Provider)
			for _, m := range info.Models {
				fmt.Fprintf(out, "  - %s\n", m)
			}
			fmt.Fprintln(out)
		}
	},
}

var flagDoctorProvider string

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the generation model and document store credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]string{"provider": flagDoctorProvider}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		return di.NewRuntime(cfg).Invoke(func(i di.Injector) error {
			fmt.Fprintf(out, "Checking %s...\n", cfg.Provider)
			gen, err := di.ResolveGenerator(i)
			if err == nil {
				_, err = gen.Generate(ctx, providers.Prompt{
					System:    "Respond with exactly: ok",
					User:      "ping",
					MaxTokens: 10,
				})
			}
			if err != nil {
				fmt.Fprintf(errOut, "FAIL: %v\n", err)
				exitCode = ExitFailure
			} else {
				fmt.Fprintf(out, "OK: %s is configured and responding\n", cfg.Provider)
			}

			fmt.Fprintln(out, "Checking document store...")
			if !cfg.Store.Configured() {
				fmt.Fprintln(out, "SKIP: document store is not configured")
				return nil
			}
			st, err := di.ResolveStore(i)
			if err == nil {
				_, err = st.Exists(ctx, "doctor-check")
			}
			if err != nil {
				fmt.Fprintf(errOut, "FAIL: %v\n", err)
				exitCode = ExitFailure
				return nil
			}
			fmt.Fprintf(out, "OK: project %s is reachable\n", cfg.Store.ProjectID)
			return nil
		})
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagDoctorProvider, "provider", "", "Provider to check")
}
