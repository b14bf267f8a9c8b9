package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/upscaler/pkg/client"
)

func newHistoryCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past upscales",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireUser(); err != nil {
				return err
			}

			list, err := apiClient.ListImages(cmd.Context(), &client.ListOptions{
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				return fmt.Errorf("failed to list images: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(list)
			}

			if len(list.Images) == 0 {
				fmt.Println("No upscaled images yet.")
				return nil
			}

			table := NewTable("ID", "SCALE", "SIZE", "CREATED", "UPSCALED")
			for _, img := range list.Images {
				table.AddRow(
					img.ID,
					fmt.Sprintf("%gx", img.Scale),
					formatBytes(img.FileSizeBytes),
					img.CreatedAt.Local().Format("2006-01-02 15:04"),
					truncate(img.UpscaledURL, 48),
				)
			}
			table.Render()

			fmt.Printf("\nPage %d of %d (%d total)\n", list.Page, list.TotalPages, list.TotalItems)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "records per page")

	return cmd
}
