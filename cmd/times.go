package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taiwan-rail-tools/thsrbook/internal/codec"
)

// newTimesCmd lists the departure time slots the booking form accepts.
func newTimesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "times",
		Short: "Lists the bookable departure time slots",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, slot := range codec.Timetable {
				fmt.Fprintln(out, codec.SlotToDisplay(slot))
			}
		},
	}
}

func init() {
	rootCmd.AddCommand(newTimesCmd())
}
