package restart

import (
	"fmt"

	"macswap/internal/app"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "restart <adapter>",
	Short: "Disable and re-enable an adapter.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Setup(false)
		if err != nil {
			return err
		}
		if err := env.Service.RestartAdapter(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "adapter %s restarted\n", args[0])
		return nil
	},
}
