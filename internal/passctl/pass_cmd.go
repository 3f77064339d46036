package passctl

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	passhandler "gatepass/internal/pass/handler"
	id "gatepass/pkg/domain"
)

func newPassCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pass",
		Short: "Issue and inspect passes",
	}

	cmd.AddCommand(newPassIssueCmd(client))
	cmd.AddCommand(newPassGetCmd(client))
	cmd.AddCommand(newPassValidCmd(client))
	cmd.AddCommand(newPassURICmd(client))

	return cmd
}

func newPassIssueCmd(client *Client) *cobra.Command {
	var asAdmin bool

	cmd := &cobra.Command{
		Use:   "issue <recipient>",
		Short: "Buy a pass for recipient, paid by the token's account",
		Long: "Buy a pass for recipient. The account behind --token pays and must have approved the custody account.\n" +
			"With --admin the pass is issued free of charge and the token must belong to the admin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := id.RequireAddress(args[0], "recipient"); err != nil {
				return err
			}
			path := "/passes"
			if asAdmin {
				path = "/admin/passes"
			}
			var pass passhandler.PassResponse
			if err := client.Do(cmd.Context(), http.MethodPost, path, passhandler.RecipientRequest{Recipient: args[0]}, &pass); err != nil {
				return err
			}
			return renderPass(cmd, &pass, &pass)
		},
	}

	cmd.Flags().BoolVar(&asAdmin, "admin", false, "Issue without payment (admin only)")

	return cmd
}

func newPassGetCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a pass with its current owner and validity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passID, err := id.ParsePassID(args[0])
			if err != nil {
				return err
			}
			var view passhandler.PassViewResponse
			if err := client.Do(cmd.Context(), http.MethodGet, "/passes/"+passID.String(), nil, &view); err != nil {
				return err
			}
			return renderPass(cmd, &view, &view.PassResponse,
				field{"OWNER", view.Owner},
				field{"VALID", view.Valid},
				field{"TOKEN URI", view.TokenURI},
			)
		},
	}
}

func newPassValidCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "valid <id>",
		Short: "Check whether a pass is unexpired",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passID, err := id.ParsePassID(args[0])
			if err != nil {
				return err
			}
			var resp passhandler.ValidityResponse
			if err := client.Do(cmd.Context(), http.MethodGet, "/passes/"+passID.String()+"/valid", nil, &resp); err != nil {
				return err
			}
			return render(cmd, &resp, field{"PASS", resp.PassID}, field{"VALID", resp.Valid})
		},
	}
}

func newPassURICmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "uri <id>",
		Short: "Print the token URI of a pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passID, err := id.ParsePassID(args[0])
			if err != nil {
				return err
			}
			var resp passhandler.TokenURIResponse
			if err := client.Do(cmd.Context(), http.MethodGet, "/passes/"+passID.String()+"/uri", nil, &resp); err != nil {
				return err
			}
			return render(cmd, &resp, field{"PASS", resp.PassID}, field{"TOKEN URI", resp.TokenURI})
		},
	}
}

func newActiveCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "active <address>",
		Short: "Check whether an account currently holds a valid pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := id.ParseAddress(args[0])
			if err != nil {
				return err
			}
			var resp passhandler.ActivityResponse
			if err := client.Do(cmd.Context(), http.MethodGet, "/addresses/"+addr.Hex()+"/active", nil, &resp); err != nil {
				return err
			}
			return render(cmd, &resp, field{"ADDRESS", resp.Address}, field{"ACTIVE", resp.Active})
		},
	}
}

func renderPass(cmd *cobra.Command, v any, p *passhandler.PassResponse, extra ...field) error {
	rows := []field{
		{"ID", p.ID},
		{"KIND", p.Kind},
		{"RECIPIENT", p.Recipient},
		{"PAYER", p.Payer},
		{"PRICE PAID", p.PricePaid},
		{"ISSUED AT", time.Unix(p.IssuedAt, 0).UTC().Format(time.RFC3339)},
		{"EXPIRES AT", time.Unix(p.ExpiresAt, 0).UTC().Format(time.RFC3339)},
	}
	return render(cmd, v, append(rows, extra...)...)
}
