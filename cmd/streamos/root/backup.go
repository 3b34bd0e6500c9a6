package root

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpggio/streamos/internal/app"
)

func newExportCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every persisted document as one JSON object",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(a *app.App) error {
				snapshot, err := a.Export(ctx)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(snapshot, "", "  ")
				if err != nil {
					return err
				}
				data = append(data, '\n')
				if len(args) == 0 {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				return os.WriteFile(args[0], data, 0o644)
			})
		},
	}
}

func newImportCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Restore a backup written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			var snapshot map[string]json.RawMessage
			if err := json.Unmarshal(data, &snapshot); err != nil {
				return fmt.Errorf("%w: %v", app.ErrInvalidBackup, err)
			}

			ctx := cmd.Context()
			return withApp(ctx, load, func(a *app.App) error {
				n, err := a.Import(ctx, snapshot)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "restored %d document(s)\n", n)
				return nil
			})
		},
	}
}
