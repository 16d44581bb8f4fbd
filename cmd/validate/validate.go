package validate

import (
	"fmt"

	"macswap/internal/app"
	"macswap/internal/mac"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "validate <mac>",
	Short: "Check whether a MAC address is well formed and unicast.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := mac.Validate(args[0])
		fmt.Fprintln(cmd.OutOrStdout(), v.Message)
		if !v.Valid {
			return app.ErrFailed
		}
		fmt.Fprintln(cmd.OutOrStdout(), mac.Normalize(args[0]))
		return nil
	},
}
