package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"macswap/cmd/change"
	"macswap/cmd/list"
	"macswap/cmd/random"
	"macswap/cmd/restart"
	"macswap/cmd/restore"
	"macswap/cmd/serve"
	"macswap/cmd/validate"
	"macswap/internal/app"
	"macswap/internal/flog"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "macswap",
	Short:         "List network adapters and change their MAC address.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", "", "Path to the configuration file.")
	rootCmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Override the configured log level (debug, info, warn, error, none).")

	rootCmd.AddCommand(list.Cmd)
	rootCmd.AddCommand(change.Cmd)
	rootCmd.AddCommand(restore.Cmd)
	rootCmd.AddCommand(restart.Cmd)
	rootCmd.AddCommand(validate.Cmd)
	rootCmd.AddCommand(random.Cmd)
	rootCmd.AddCommand(serve.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	flog.Flush()
	if n := flog.Dropped(); n > 0 {
		fmt.Fprintf(os.Stderr, "macswap: %d log lines dropped\n", n)
	}
	if err != nil {
		if !errors.Is(err, app.ErrFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
