package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var forksCmd = &cobra.Command{
	Use:   "forks",
	Short: "Print the normalized fork timeline",
	Run: func(cmd *cobra.Command, args []string) {
		app, _ := newOneShot()
		defer app.Close()

		state := app.Dashboard().Refresh(context.Background())
		fmt.Fprintf(cmd.OutOrStdout(), "Fork timeline (%s)\n\n", state.TimelineSource)
		renderTable(cmd.OutOrStdout(),
			[]string{"Fork", "Epoch", "Activation", "EL", "CL", "Status"},
			forkRows(state.Forks, time.Now()))
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Evaluate and print network health",
	Run: func(cmd *cobra.Command, args []string) {
		app, _ := newOneShot()
		defer app.Close()

		state := app.Dashboard().Refresh(context.Background())
		renderTable(cmd.OutOrStdout(), []string{"Metric", "Value"}, healthRows(state))
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe every configured endpoint once",
	Run: func(cmd *cobra.Command, args []string) {
		app, cfg := newOneShot()
		defer app.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Probe.Timeout+5*time.Second)
		defer cancel()

		set := app.Dashboard().ProbeEndpoints(ctx)
		renderTable(cmd.OutOrStdout(),
			[]string{"Endpoint", "Kind", "URL", "Status", "Latency", "Error"},
			probeRows(set))
	},
}

func init() {
	rootCmd.AddCommand(forksCmd, healthCmd, probeCmd)
}
