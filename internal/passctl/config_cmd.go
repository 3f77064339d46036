package passctl

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	passhandler "gatepass/internal/pass/handler"
	id "gatepass/pkg/domain"
)

func newConfigCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the pass configuration",
	}

	cmd.AddCommand(newConfigShowCmd(client))
	cmd.AddCommand(newSetCostCmd(client))
	cmd.AddCommand(newSetDurationCmd(client))
	cmd.AddCommand(newSetMaxSupplyCmd(client))
	cmd.AddCommand(newSetMetadataBaseCmd(client))

	return cmd
}

func newConfigShowCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg passhandler.ConfigResponse
			if err := client.Do(cmd.Context(), http.MethodGet, "/config", nil, &cfg); err != nil {
				return err
			}
			return renderConfig(cmd, &cfg)
		},
	}
}

// newSetCostCmd replaces the price-update script: the amount is in token minor units.
func newSetCostCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:     "set-cost <amount>",
		Short:   "Set the pass price in payment-token minor units",
		Example: "  passctl config set-cost 4990000",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := id.ParseAmount(args[0]); err != nil {
				return err
			}
			return updateConfig(cmd, client, "/admin/config/pass-cost", passhandler.SetPassCostRequest{PassCost: args[0]})
		},
	}
}

func newSetDurationCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:     "set-duration <duration>",
		Short:   "Set the validity period of newly issued passes",
		Long:    "Set the validity period of newly issued passes. Accepts whole seconds or a Go duration such as 720h.",
		Example: "  passctl config set-duration 2592000\n  passctl config set-duration 720h",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := parseSeconds(args[0])
			if err != nil {
				return err
			}
			return updateConfig(cmd, client, "/admin/config/pass-duration", passhandler.SetPassDurationRequest{PassDurationSeconds: &seconds})
		},
	}
}

func newSetMaxSupplyCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "set-max-supply <n>",
		Short: "Set the issuance cap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid max supply %q: %w", args[0], err)
			}
			return updateConfig(cmd, client, "/admin/config/max-supply", passhandler.SetMaxSupplyRequest{MaxSupply: &n})
		},
	}
}

func newSetMetadataBaseCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "set-metadata-base <uri>",
		Short: "Set the prefix of token URIs; an empty string clears it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(cmd, client, "/admin/config/metadata-base", passhandler.SetMetadataBaseRequest{MetadataBase: args[0]})
		},
	}
}

func updateConfig(cmd *cobra.Command, client *Client, path string, body any) error {
	var cfg passhandler.ConfigResponse
	if err := client.Do(cmd.Context(), http.MethodPut, path, body, &cfg); err != nil {
		return err
	}
	return renderConfig(cmd, &cfg)
}

func renderConfig(cmd *cobra.Command, cfg *passhandler.ConfigResponse) error {
	return render(cmd, cfg,
		field{"PASS COST", cfg.PassCost},
		field{"PASS DURATION", (time.Duration(cfg.PassDurationSeconds) * time.Second).String()},
		field{"MAX SUPPLY", cfg.MaxSupply},
		field{"TOTAL ISSUED", cfg.TotalIssued},
		field{"METADATA BASE", cfg.MetadataBase},
		field{"ADMIN", cfg.Admin},
		field{"PAYMENT TOKEN", cfg.PaymentToken},
		field{"CUSTODY", cfg.Custody},
	)
}

func parseSeconds(raw string) (uint64, error) {
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use seconds or a Go duration like 720h", raw)
	}
	if d < 0 || d%time.Second != 0 {
		return 0, fmt.Errorf("duration %q must be a non-negative whole number of seconds", raw)
	}
	return uint64(d / time.Second), nil
}
