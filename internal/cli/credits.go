package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/upscaler/pkg/client"
)

func newCreditsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Show or spend credits",
	}

	cmd.AddCommand(newCreditsShowCmd())
	cmd.AddCommand(newCreditsDeductCmd())

	return cmd
}

func newCreditsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the credit balance and usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireUser(); err != nil {
				return err
			}

			usage, err := apiClient.GetUsage(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get usage: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(usage)
			}

			fmt.Printf("Credits remaining: %s\n", usage.CreditsRemaining)
			if !usage.Unlimited {
				fmt.Printf("Credits total:     %d\n", usage.CreditsTotal)
			}
			fmt.Printf("Images upscaled:   %d\n", usage.ImagesUpscaled)
			return nil
		},
	}
}

func newCreditsDeductCmd() *cobra.Command {
	var amount int64

	cmd := &cobra.Command{
		Use:   "deduct",
		Short: "Spend credits without upscaling",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser()
			if err != nil {
				return err
			}

			resp, err := apiClient.DeductCredits(cmd.Context(), user.ID, amount)
			if err != nil {
				if apiErr, ok := client.AsAPIError(err); ok && apiErr.IsPaymentRequired() && apiErr.Credits != nil {
					return fmt.Errorf("insufficient credits: %d remaining", *apiErr.Credits)
				}
				return fmt.Errorf("failed to deduct credits: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(resp)
			}

			fmt.Printf("Credits remaining: %s\n", resp.Credits)
			if resp.TotalUpscales != nil {
				fmt.Printf("Total upscales:    %d\n", *resp.TotalUpscales)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 1, "credits to spend")

	return cmd
}
