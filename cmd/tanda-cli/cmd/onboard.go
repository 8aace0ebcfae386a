package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/tandalabs/tanda-gateway/core"
	"github.com/tandalabs/tanda-gateway/service/onboarding"
)

var onboardOpt struct {
	name      string
	currency  string
	amount    string
	frequency int
	yield     bool
	phone     string
	wait      time.Duration
	poll      time.Duration
}

// onboardCmd drives the whole five-stage flow in one run: collect the
// parameters, request a code, wait for the WhatsApp confirmation, create
// the group.
var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "create a tanda group end to end",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		amount, err := decimal.NewFromString(onboardOpt.amount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", onboardOpt.amount, err)
		}

		currency := core.CurrencyLocal
		if onboardOpt.currency == "usdc" {
			currency = core.CurrencyStablecoin
		}

		client := getGatewayClient()
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		wizard := onboarding.NewWizard(client, client, logger, onboarding.Config{
			PollInterval: onboardOpt.poll,
			MaxWait:      onboardOpt.wait,
		})

		wizard.SetBasics(onboardOpt.name, currency, amount)
		if err := wizard.Next(); err != nil {
			return err
		}

		wizard.SetSchedule(onboardOpt.frequency, onboardOpt.yield)
		if err := wizard.Next(); err != nil {
			return err
		}

		wizard.SetPhone(onboardOpt.phone)
		if err := wizard.RequestCode(ctx); err != nil {
			return err
		}

		if err := wizard.Next(); err != nil {
			return err
		}

		cmd.Println("verification code:", wizard.State().VerificationCode)
		cmd.Println("send it to the WhatsApp agent, waiting for confirmation...")

		if err := wizard.AwaitVerification(ctx); err != nil {
			return err
		}

		if err := wizard.Next(); err != nil {
			return err
		}

		receipt, err := wizard.CreateGroup(ctx)
		if err != nil {
			return err
		}

		return printJson(cmd, receipt)
	},
}

func init() {
	rootCmd.AddCommand(onboardCmd)

	onboardCmd.Flags().StringVar(&onboardOpt.name, "name", "", "group name")
	onboardCmd.Flags().StringVar(&onboardOpt.currency, "currency", "bs", "currency: bs or usdc")
	onboardCmd.Flags().StringVar(&onboardOpt.amount, "amount", "0", "total pot per round")
	onboardCmd.Flags().IntVar(&onboardOpt.frequency, "frequency", 7, "days between rounds")
	onboardCmd.Flags().BoolVar(&onboardOpt.yield, "yield", false, "park the pot in yield between rounds")
	onboardCmd.Flags().StringVar(&onboardOpt.phone, "phone", "", "organizer phone number")
	onboardCmd.Flags().DurationVar(&onboardOpt.wait, "wait", 10*time.Minute, "how long to wait for phone confirmation")
	onboardCmd.Flags().DurationVar(&onboardOpt.poll, "poll", 3*time.Second, "verification poll interval")
}
