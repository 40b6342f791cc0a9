package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taiwan-rail-tools/thsrbook/internal/config"
	"github.com/taiwan-rail-tools/thsrbook/internal/profile"
)

// newProfileCmd groups the saved-profile subcommands. The profile pre-fills
// later `book` runs; flags and config still override it.
func newProfileCmd() *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manages the saved booking profile",
	}
	profileCmd.AddCommand(newProfileSaveCmd(), newProfileShowCmd(), newProfileDeleteCmd())
	return profileCmd
}

func openStore() (*profile.Store, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	dir, err := profileDir(&cfg)
	if err != nil {
		return nil, err
	}
	store, err := profile.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	return store, nil
}

func newProfileSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Saves the current booking settings as the default profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config: %w", err)
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			record := profile.Record{
				StartStation: cfg.Booking.StartStation,
				DestStation:  cfg.Booking.DestStation,
				OutboundTime: cfg.Booking.OutboundTime,
				Tickets:      cfg.Booking.Tickets,
				PersonalID:   cfg.Booking.PersonalID,
				Phone:        cfg.Booking.Phone,
				Email:        cfg.Booking.Email,
				PassengerIDs: cfg.Booking.PassengerIDs,
			}
			if err := store.Save(record); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile saved.")
			return nil
		},
	}
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Prints the saved profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.Load()
			if errors.Is(err, profile.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved profile.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("load profile: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "出發站：%s\n", record.StartStation)
			fmt.Fprintf(out, "到達站：%s\n", record.DestStation)
			fmt.Fprintf(out, "出發時間：%s\n", record.OutboundTime)
			for category, count := range record.Tickets {
				fmt.Fprintf(out, "票數（%s）：%d\n", category, count)
			}
			fmt.Fprintf(out, "身分證字號：%s\n", mask(record.PersonalID))
			fmt.Fprintf(out, "手機號碼：%s\n", record.Phone)
			fmt.Fprintf(out, "電子郵件：%s\n", record.Email)
			return nil
		},
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Deletes the saved profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(); err != nil {
				return fmt.Errorf("delete profile: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile deleted.")
			return nil
		},
	}
}

// mask hides the middle of a national ID when printing.
func mask(id string) string {
	if len(id) < 4 {
		return id
	}
	return id[:2] + "******" + id[len(id)-2:]
}

func init() {
	rootCmd.AddCommand(newProfileCmd())
}
