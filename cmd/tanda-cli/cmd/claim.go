package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/tandalabs/tanda-gateway/core"
)

var claimOpt struct {
	paymentType string
	bank        string
	amount      string
	reference   string
	screenshot  string
}

// claimCmd represents the claim command
var claimCmd = &cobra.Command{
	Use:   "claim <order-id>",
	Short: "claim a payout order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &core.ClaimRequest{PaymentType: claimOpt.paymentType}

		switch claimOpt.paymentType {
		case "fiat":
			amount, err := decimal.NewFromString(claimOpt.amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", claimOpt.amount, err)
			}

			req.ProofMetadata = &core.PaymentProofFiat{
				Bank:          claimOpt.bank,
				Amount:        amount,
				Reference:     claimOpt.reference,
				ScreenshotURL: claimOpt.screenshot,
			}
		case "crypto":
			// the gateway holds the wallet session and builds the
			// X-PAYMENT header itself
		default:
			return fmt.Errorf("type must be fiat or crypto")
		}

		receipt, err := getGatewayClient().Claim(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}

		return printJson(cmd, receipt)
	},
}

func init() {
	rootCmd.AddCommand(claimCmd)

	claimCmd.Flags().StringVar(&claimOpt.paymentType, "type", "fiat", "payment type: fiat or crypto")
	claimCmd.Flags().StringVar(&claimOpt.bank, "bank", "", "bank the fiat payment was sent from")
	claimCmd.Flags().StringVar(&claimOpt.amount, "amount", "0", "paid fiat amount")
	claimCmd.Flags().StringVar(&claimOpt.reference, "reference", "", "bank transfer reference")
	claimCmd.Flags().StringVar(&claimOpt.screenshot, "screenshot", "", "payment screenshot url (optional)")
}
