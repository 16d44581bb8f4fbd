package serve

import (
	"macswap/internal/api"
	"macswap/internal/app"
	"macswap/internal/flog"

	"github.com/spf13/cobra"
)

var listen string

func init() {
	Cmd.Flags().StringVarP(&listen, "listen", "l", "", "Override the configured listen address.")
}

var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the adapter operations as a JSON API.",
	Long:  "Serve the adapter operations as a JSON API. Only one change, restore or restart runs per adapter at a time.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.Setup(true)
		if err != nil {
			return err
		}
		addr := env.Conf.Serve.Listen
		if listen != "" {
			addr = listen
		}

		srv := api.New(env.Service, env.Metrics, api.Options{
			Metrics:   *env.Conf.Serve.Metrics,
			ListCache: env.Conf.Serve.ListCache,
		})
		flog.Infof("serving adapters on %s for %s", addr, env.Service.Platform())
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}
