package random

import (
	"fmt"

	"macswap/internal/mac"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "random",
	Short: "Print a random locally usable unicast MAC address.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), mac.GenerateRandom())
	},
}
