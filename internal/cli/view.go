package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/codeoverview/internal/config"
	"github.com/dshills/codeoverview/internal/di"
	"github.com/dshills/codeoverview/internal/output"
	"github.com/dshills/codeoverview/internal/tui"
)

var flagViewID string

var viewCmd = &cobra.Command{
	Use:   "view [id]",
	Short: "Browse an overview and chat about it",
	Long:  "Open the terminal viewer. An ID given as argument or with --id is checked and can be opened right away.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}

		id := flagViewID
		if len(args) == 1 {
			id = args[0]
		}

		ctx := cmd.Context()
		err = di.NewRuntime(cfg).Invoke(func(i di.Injector) error {
			st, err := di.ResolveStore(i)
			if err != nil {
				return err
			}
			c, err := di.ResolveClient(i)
			if err != nil {
				return err
			}
			return tui.Run(ctx, tui.New(ctx, st, c, tui.WithInitialID(id)))
		})
		if err != nil {
			output.Errorf(cmd.ErrOrStderr(), useColor(cmd.ErrOrStderr()), "%v", err)
			exitCode = ExitFailure
		}
		return nil
	},
}

func init() {
	viewCmd.Flags().StringVar(&flagViewID, "id", "", "Overview ID to open")
}
