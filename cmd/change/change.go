package change

import (
	"errors"
	"fmt"

	"macswap/internal/app"
	"macswap/internal/render"

	"github.com/spf13/cobra"
)

var useRandom bool

func init() {
	Cmd.Flags().BoolVarP(&useRandom, "random", "r", false, "Generate a random unicast address instead of passing one.")
}

var Cmd = &cobra.Command{
	Use:   "change <adapter> [mac]",
	Short: "Change the MAC address of an adapter.",
	Long:  "Change the MAC address of an adapter. The original address is printed so it can be restored later.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Setup(false)
		if err != nil {
			return err
		}

		var target string
		switch {
		case useRandom && len(args) == 2:
			return errors.New("pass either a MAC address or --random, not both")
		case useRandom:
			target = env.Service.GenerateRandomMac()
		case len(args) == 2:
			target = args[1]
		default:
			return errors.New("a MAC address or --random is required")
		}

		if v := env.Service.ValidateMac(target); !v.Valid {
			return errors.New(v.Message)
		}

		out := env.Service.ChangeMac(cmd.Context(), args[0], target)
		fmt.Fprintln(cmd.OutOrStdout(), render.Outcome(out))
		if !out.Success {
			return app.ErrFailed
		}
		return nil
	},
}
