package list

import (
	"encoding/json"
	"fmt"

	"macswap/internal/app"
	"macswap/internal/render"

	"github.com/spf13/cobra"
)

var asJSON bool

func init() {
	Cmd.Flags().BoolVar(&asJSON, "json", false, "Print the adapters as JSON.")
}

var Cmd = &cobra.Command{
	Use:   "list",
	Short: "List network adapters that have a hardware address.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Setup(false)
		if err != nil {
			return err
		}
		records, err := env.Service.ListAdapters(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.Adapters(records))
		return nil
	},
}
