package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/tandalabs/tanda-gateway/core"
	"github.com/tandalabs/tanda-gateway/store"
)

var verifyOpt struct {
	wait time.Duration
	poll time.Duration
}

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <phone>",
	Short: "request a verification code and wait for the WhatsApp confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		phone := core.NormalizePhone(args[0])
		client := getGatewayClient()

		code, err := client.RequestCode(ctx, phone)
		if err != nil {
			return err
		}

		cmd.Println("verification code:", code)
		cmd.Println("send it to the WhatsApp agent, waiting for confirmation...")

		deadline := time.NewTimer(verifyOpt.wait)
		defer deadline.Stop()

		ticker := time.NewTicker(verifyOpt.poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-deadline.C:
				return core.ErrVerificationTimeout
			case <-ticker.C:
				record, err := client.Lookup(ctx, phone)
				if err != nil {
					if !store.IsErrNotFound(err) {
						cmd.PrintErrln("lookup failed:", err)
					}
					continue
				}

				if record.Verified {
					return printJson(cmd, record)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().DurationVar(&verifyOpt.wait, "wait", 10*time.Minute, "how long to wait for confirmation")
	verifyCmd.Flags().DurationVar(&verifyOpt.poll, "poll", 3*time.Second, "poll interval")
}
