package cmd

import (
	"github.com/spf13/cobra"
)

// orderCmd represents the order command
var orderCmd = &cobra.Command{
	Use:   "order <id>",
	Short: "fetch a payout order from the gateway",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := getGatewayClient().Order(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printJson(cmd, order)
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
}
