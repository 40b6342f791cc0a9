package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taiwan-rail-tools/thsrbook/internal/codec"
)

// newStationsCmd lists the stations the booking form accepts.
func newStationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stations",
		Short: "Lists the bookable stations",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, station := range codec.Stations() {
				fmt.Fprintf(out, "%2d  %s（%s）\n", station.Code(), station, station.Key())
			}
		},
	}
}

func init() {
	rootCmd.AddCommand(newStationsCmd())
}
