package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpggio/streamos/internal/app"
	"github.com/rpggio/streamos/internal/domain/badge"
	"github.com/rpggio/streamos/internal/domain/item"
)

func newStatusCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show level, XP, streak, badges and today's progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(a *app.App) error {
				view, err := a.Stats(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				s := view.Stats
				fmt.Fprintf(out, "Level %d  XP %d/%d  Streak %d day(s)\n", s.Level, s.CurrentXP, s.NextLevelXP, s.Streak)

				unlocked := badge.Unlocked(view.Badges)
				if len(unlocked) == 0 {
					fmt.Fprintln(out, "Badges: none yet")
				} else {
					fmt.Fprintln(out, "Badges:")
					for _, b := range unlocked {
						fmt.Fprintf(out, "  %s %s\n", b.Icon, b.Name)
					}
				}

				for _, list := range item.Lists {
					items, err := a.Items.List(ctx, list)
					if err != nil {
						return err
					}
					done := 0
					for _, it := range items {
						if it.Completed {
							done++
						}
					}
					fmt.Fprintf(out, "%-10s %d/%d done\n", list, done, len(items))
				}
				return nil
			})
		},
	}
}
