package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server readiness and account summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user := session.CurrentUser()

			format := getOutputFormat()
			if format != "table" {
				summary := map[string]interface{}{}

				ready, err := apiClient.Ready(ctx)
				if err == nil {
					summary["server"] = ready
				} else {
					summary["server_error"] = err.Error()
				}
				if user != nil {
					if usage, err := apiClient.GetUsage(ctx); err == nil {
						summary["usage"] = usage
					}
				}
				return printOutput(summary)
			}

			fmt.Println("Upscaler Status")
			fmt.Println(strings.Repeat("=", 40))

			ready, err := apiClient.Ready(ctx)
			if err != nil {
				fmt.Printf("  Server:        (error: %v)\n", err)
			} else {
				fmt.Printf("  Server:        %s\n", formatStatus(ready.Status))
				fmt.Printf("  Database:      %s\n", formatStatus(ready.Database))
				fmt.Printf("  Upscaler API:  %s\n", formatStatus(ready.Upstream))
			}

			if user == nil {
				fmt.Println("  Account:       not signed in")
				return nil
			}

			fmt.Printf("  Account:       %s\n", user.Email)
			usage, err := apiClient.GetUsage(ctx)
			if err != nil {
				fmt.Printf("  Usage:         (error: %v)\n", err)
				return nil
			}
			fmt.Printf("  Credits:       %s\n", usage.CreditsRemaining)
			fmt.Printf("  Upscaled:      %d images\n", usage.ImagesUpscaled)

			return nil
		},
	}
}
