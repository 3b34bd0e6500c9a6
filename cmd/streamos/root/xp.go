package root

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rpggio/streamos/internal/app"
)

func newXPCmd(load configLoader) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "xp <delta>",
		Short: "Grant (or with a negative delta, revoke) XP",
		Example: `  streamos xp 50
  streamos xp --source=raid 120
  streamos xp -- -15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("delta must be an integer: %w", err)
			}
			ctx := cmd.Context()
			return withApp(ctx, load, func(a *app.App) error {
				res, err := a.ApplyXP(ctx, delta, source)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				s := res.Stats
				fmt.Fprintf(out, "%+d XP -> Level %d  XP %d/%d\n", res.Delta, s.Level, s.CurrentXP, s.NextLevelXP)
				if res.LeveledUp {
					fmt.Fprintf(out, "Level up! +%d level(s)\n", res.LevelsGained)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "cli", "source recorded in the activity log")
	return cmd
}
