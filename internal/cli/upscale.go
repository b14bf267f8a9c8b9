package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/upscaler/pkg/client"
)

// upscaleResult is one row of the upscale command output
type upscaleResult struct {
	File   string  `json:"file" yaml:"file"`
	Status string  `json:"status" yaml:"status"`
	Scale  float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	Output string  `json:"output,omitempty" yaml:"output,omitempty"`
	Error  string  `json:"error,omitempty" yaml:"error,omitempty"`
}

func newUpscaleCmd() *cobra.Command {
	var scale float64
	var outDir string

	cmd := &cobra.Command{
		Use:   "upscale <files...>",
		Short: "Upscale local images",
		Long: `Upscale one or more local images. Signed-in users spend one credit per
image; anonymous use is limited to a few images per run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if scale == 0 {
				scale = viper.GetFloat64("default_scale")
			}

			files := make([]client.File, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				files = append(files, client.File{
					Name:        path,
					ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
					Data:        data,
				})
			}

			o := client.NewOrchestrator(apiClient, session, stderrLogger{})
			if ids := o.AddFiles(files); len(ids) == 0 {
				if msg := o.Snapshot().LastError; msg != "" {
					return errors.New(msg)
				}
				return fmt.Errorf("no image files to upscale")
			}
			if msg := o.Snapshot().LastError; msg != "" {
				fmt.Fprintln(os.Stderr, "Warning:", msg)
			}

			err := o.UpscaleAll(ctx, scale)
			switch {
			case errors.Is(err, client.ErrPremiumRequired):
				return fmt.Errorf("not enough credits for %d image(s). Upgrade to premium or purchase more credits", len(files))
			case errors.Is(err, client.ErrFreeLimitReached):
				fmt.Fprintln(os.Stderr, "Warning:", o.Snapshot().LastError)
			case err != nil:
				return err
			}

			var results []upscaleResult
			for _, it := range o.Snapshot().Items {
				r := upscaleResult{File: it.Name, Status: string(it.Status), Scale: it.Scale, Error: it.Error}
				if it.Status == client.ItemSucceeded {
					out, werr := writeResult(ctx, it, outDir)
					if werr != nil {
						r.Status = string(client.ItemFailed)
						r.Error = werr.Error()
					}
					r.Output = out
				}
				results = append(results, r)
			}

			if getOutputFormat() != "table" {
				return printOutput(results)
			}

			table := NewTable("FILE", "STATUS", "SCALE", "OUTPUT")
			for _, r := range results {
				detail := r.Output
				if r.Error != "" {
					detail = r.Error
				}
				scaleCol := "-"
				if r.Scale > 0 {
					scaleCol = fmt.Sprintf("%gx", r.Scale)
				}
				table.AddRow(truncate(r.File, 40), formatStatus(r.Status), scaleCol, detail)
			}
			table.Render()

			if user := session.CurrentUser(); user != nil {
				fmt.Printf("\nCredits remaining: %s\n", formatCredits(user))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&scale, "scale", 0, "upscale factor between 1 and 4 (default from config, else 2)")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory for upscaled images")

	return cmd
}

// writeResult stores the upscaled image next to outDir and returns its path
func writeResult(ctx context.Context, it client.Item, outDir string) (string, error) {
	data, ext, err := fetchResult(ctx, it.UpscaledURL)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(it.Name), filepath.Ext(it.Name))
	path := filepath.Join(outDir, fmt.Sprintf("%s_x%g%s", base, it.Scale, ext))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// fetchResult decodes a data URL or downloads a stored image
func fetchResult(ctx context.Context, url string) ([]byte, string, error) {
	if strings.HasPrefix(url, "data:") {
		return decodeDataURL(url)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download result: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download result: %w", err)
	}
	return data, extensionFor(resp.Header.Get("Content-Type")), nil
}

func decodeDataURL(url string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(url, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("unsupported data URL")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid data URL: %w", err)
	}
	return data, extensionFor(strings.TrimSuffix(header, ";base64")), nil
}

func extensionFor(contentType string) string {
	switch strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
