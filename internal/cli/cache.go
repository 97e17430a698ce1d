package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codeoverview/internal/config"
	"github.com/dshills/codeoverview/internal/di"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the completion cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached completions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		// Entries left by an earlier enabled run are cleared too.
		cfg.Cache.Enabled = true
		return di.NewRuntime(cfg).Invoke(func(i di.Injector) error {
			c, err := di.ResolveCache(i)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			n, err := c.Clear()
			if err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%d entries removed).\n", n)
			return nil
		})
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		return di.NewRuntime(cfg).Invoke(func(i di.Injector) error {
			c, err := di.ResolveCache(i)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			if !c.Enabled() {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled.")
				return nil
			}
			stats, err := c.GetStats()
			if err != nil {
				return fmt.Errorf("reading cache stats: %w", err)
			}
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
