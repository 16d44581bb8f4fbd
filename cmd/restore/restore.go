package restore

import (
	"errors"
	"fmt"

	"macswap/internal/app"
	"macswap/internal/render"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "restore <adapter> <mac>",
	Short: "Put back an adapter's original MAC address.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Setup(false)
		if err != nil {
			return err
		}
		if v := env.Service.ValidateMac(args[1]); !v.Valid {
			return errors.New(v.Message)
		}

		out := env.Service.RestoreMac(cmd.Context(), args[0], args[1])
		fmt.Fprintln(cmd.OutOrStdout(), render.Outcome(out))
		if !out.Success {
			return app.ErrFailed
		}
		return nil
	},
}
