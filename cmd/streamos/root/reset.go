package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpggio/streamos/internal/app"
)

func newResetCmd(load configLoader) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:       "reset <xp|factory>",
		Short:     "Reset the XP ledger, or wipe everything",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"xp", "factory"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "factory" && !yes {
				return errors.New("factory reset deletes all lists, projects and history; rerun with --yes")
			}
			ctx := cmd.Context()
			return withApp(ctx, load, func(a *app.App) error {
				out := cmd.OutOrStdout()
				if args[0] == "xp" {
					view, err := a.ResetXP(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "ledger reset: Level %d  XP %d/%d\n", view.Stats.Level, view.Stats.CurrentXP, view.Stats.NextLevelXP)
					return nil
				}
				if _, err := a.FactoryReset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "factory reset complete")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm a factory reset")
	return cmd
}
