package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/taiwan-rail-tools/thsrbook/internal/booking"
	"github.com/taiwan-rail-tools/thsrbook/internal/captcha"
	"github.com/taiwan-rail-tools/thsrbook/internal/config"
	"github.com/taiwan-rail-tools/thsrbook/internal/console"
	"github.com/taiwan-rail-tools/thsrbook/internal/observability"
	"github.com/taiwan-rail-tools/thsrbook/internal/profile"
	"github.com/taiwan-rail-tools/thsrbook/internal/transport"
)

// newBookCmd creates the `book` command.
func newBookCmd() *cobra.Command {
	bookCmd := &cobra.Command{
		Use:   "book",
		Short: "Runs one reservation through the booking site",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so the command line overrides
			// the config file and environment with the right precedence.
			for flag, key := range map[string]string{
				"from":        "booking.start_station",
				"to":          "booking.dest_station",
				"date":        "booking.outbound_date",
				"time":        "booking.outbound_time",
				"personal-id": "booking.personal_id",
				"phone":       "booking.phone",
				"email":       "booking.email",
				"auto":        "booking.auto",
			} {
				if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config: %w", err)
			}
			applyTicketFlags(cmd, &cfg)

			record, err := loadProfile(&cfg, logger)
			if err != nil {
				return err
			}

			request, err := config.Resolve(cfg.Booking, record, time.Now())
			if err != nil {
				return fmt.Errorf("invalid booking input: %w", err)
			}

			client, err := newTransport(&cfg, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			ui := console.New(os.Stdin, os.Stdout)
			cycle := booking.NewCaptchaCycle(
				client,
				newSolver(&cfg, logger),
				captcha.NewManualPrompt(os.Stdin, os.Stdout, cfg.Captcha.ImageDir),
				booking.CycleConfig{
					MaxRetries: cfg.Captcha.MaxRetries,
					RetryDelay: cfg.Captcha.RetryDelay,
				},
				logger,
			)
			orchestrator := booking.NewOrchestrator(client, cycle, ui, logger)

			runID := uuid.New().String()
			logger.Info("starting booking run", zap.String("runID", runID))

			result, err := orchestrator.Run(ctx, request)
			if err != nil {
				var soldOut *booking.SoldOutError
				if errors.As(err, &soldOut) {
					ui.Printf("\n%s\n", soldOut.Feedback)
					ui.Printf("沒有可售車次，請更換出發日期或時段後再試。\n")
				}
				logger.Error("booking run failed", zap.String("runID", runID), zap.Error(err))
				return err
			}

			printResult(ui, result)
			return nil
		},
	}

	flags := bookCmd.Flags()
	flags.String("from", "", "departure station (e.g. 台北)")
	flags.String("to", "", "arrival station (e.g. 左營)")
	flags.String("date", "", "outbound date, yyyy/MM/dd")
	flags.String("time", "", "outbound time, HH:MM")
	flags.String("personal-id", "", "booker national ID")
	flags.String("phone", "", "contact phone number")
	flags.String("email", "", "contact email")
	flags.Bool("auto", false, "pick the shortest-duration train without prompting")
	flags.Int("adult", -1, "adult ticket count")
	flags.Int("child", -1, "child ticket count")
	flags.Int("disabled", -1, "disabled ticket count")
	flags.Int("elder", -1, "elder ticket count")
	flags.Int("college", -1, "college ticket count")
	flags.Int("youth", -1, "youth ticket count")
	return bookCmd
}

// applyTicketFlags merges explicitly set per-category count flags over the
// config file's ticket map. Viper cannot bind individual map keys, so these
// are applied by hand.
func applyTicketFlags(cmd *cobra.Command, cfg *config.Config) {
	for _, name := range []string{"adult", "child", "disabled", "elder", "college", "youth"} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		count, err := cmd.Flags().GetInt(name)
		if err != nil || count < 0 {
			continue
		}
		if cfg.Booking.Tickets == nil {
			cfg.Booking.Tickets = make(map[string]int)
		}
		cfg.Booking.Tickets[name] = count
	}
}

// loadProfile opens the store and reads the saved record. A missing profile
// is normal; any other failure aborts.
func loadProfile(cfg *config.Config, logger *zap.Logger) (*profile.Record, error) {
	dir, err := profileDir(cfg)
	if err != nil {
		return nil, err
	}
	store, err := profile.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	defer store.Close()

	record, err := store.Load()
	if errors.Is(err, profile.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	logger.Debug("loaded saved profile")
	return &record, nil
}

func newTransport(cfg *config.Config, logger *zap.Logger) (*transport.Client, error) {
	tcfg := transport.DefaultConfig()
	if cfg.Network.BaseURL != "" {
		tcfg.BaseURL = cfg.Network.BaseURL
	}
	if cfg.Network.UserAgent != "" {
		tcfg.UserAgent = cfg.Network.UserAgent
	}
	if cfg.Network.RequestTimeout > 0 {
		tcfg.RequestTimeout = cfg.Network.RequestTimeout
	}
	if cfg.Network.StepDelay > 0 {
		tcfg.StepDelay = cfg.Network.StepDelay
	}
	tcfg.IgnoreTLSErrors = cfg.Network.IgnoreTLSErrors
	return transport.NewClient(tcfg, logger)
}

// newSolver returns the OCR service client when an endpoint is configured,
// otherwise every challenge goes straight to the terminal.
func newSolver(cfg *config.Config, logger *zap.Logger) captcha.Solver {
	if cfg.OCR.Endpoint == "" {
		return captcha.NopSolver{}
	}
	return captcha.NewServiceSolver(cfg.OCR.Endpoint, cfg.OCR.Timeout, logger)
}

func printResult(ui *console.Console, result *booking.Result) {
	ui.Printf("\n訂位完成！\n")
	if result.PNR != "" {
		ui.Printf("訂位代號：%s\n", result.PNR)
	}
	if result.TrainID != "" {
		ui.Printf("車次：%s\n", result.TrainID)
	}
	if result.Date != "" {
		ui.Printf("日期：%s\n", result.Date)
	}
	if result.Depart != "" {
		ui.Printf("出發～到達：%s～%s\n", result.Depart, result.Arrive)
	}
	if result.TotalPrice != "" {
		ui.Printf("總價：%s\n", result.TotalPrice)
	}
	if result.PaymentDeadline != "" {
		ui.Printf("%s\n", result.PaymentDeadline)
	}
	ui.Printf("\n請使用官方提供的管道完成後續付款以及取票!!\n")
}

func init() {
	rootCmd.AddCommand(newBookCmd())
}
