package passctl

import (
	"net/http"

	"github.com/spf13/cobra"

	passhandler "gatepass/internal/pass/handler"
	id "gatepass/pkg/domain"
)

func newAdminCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin-only treasury and governance operations",
	}

	cmd.AddCommand(newTransferAdminCmd(client))
	cmd.AddCommand(newWithdrawCmd(client))

	return cmd
}

func newTransferAdminCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <new-admin>",
		Short: "Hand the admin role to another account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := id.RequireAddress(args[0], "new admin"); err != nil {
				return err
			}
			var cfg passhandler.ConfigResponse
			if err := client.Do(cmd.Context(), http.MethodPost, "/admin/transfer", passhandler.TransferAdminRequest{NewAdmin: args[0]}, &cfg); err != nil {
				return err
			}
			return renderConfig(cmd, &cfg)
		},
	}
}

func newWithdrawCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <to>",
		Short: "Sweep the custody balance to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := id.RequireAddress(args[0], "to"); err != nil {
				return err
			}
			var resp passhandler.WithdrawResponse
			if err := client.Do(cmd.Context(), http.MethodPost, "/admin/withdraw", passhandler.WithdrawRequest{To: args[0]}, &resp); err != nil {
				return err
			}
			return render(cmd, &resp, field{"TO", resp.To}, field{"AMOUNT", resp.Amount})
		},
	}
}
