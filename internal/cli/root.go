package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/upscaler/pkg/client"
)

var (
	cfgFile      string
	outputFormat string
	serverURL    string
	apiClient    *client.Client
	session      *client.SessionManager
)

var rootCmd = &cobra.Command{
	Use:   "upscaler",
	Short: "Upscaler CLI - AI image upscaling from the command line",
	Long: `Upscaler CLI upscales local images through the Upscaler API, tracks
your credit balance and lists your upscale history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		if err := initClient(); err != nil {
			return err
		}
		return initSession(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if session != nil {
			session.Close()
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.upscaler/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newUpscaleCmd())
	rootCmd.AddCommand(newCreditsCmd())
	rootCmd.AddCommand(newHistoryCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		_ = os.MkdirAll(dir, 0700)
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("UPSCALER")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", "http://localhost:8080")
	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".upscaler"), nil
}

// configPath is the file written by config and auth commands
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func initClient() error {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}

	apiClient = client.NewClient(client.Config{
		BaseURL: url,
		APIKey:  viper.GetString("api_key"),
		Logger:  stderrLogger{},
	})
	return nil
}

// initSession restores stored tokens. A missing or expired login leaves
// the session signed out.
func initSession(ctx context.Context) error {
	session = client.NewSession(apiClient, client.SessionConfig{
		TokenStore: newViperTokenStore(viper.GetViper(), writeConfig),
		Logger:     stderrLogger{},
	})
	if err := session.Init(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	return nil
}

func requireUser() (*client.CurrentUser, error) {
	user := session.CurrentUser()
	if user == nil {
		return nil, fmt.Errorf("not authenticated. Run 'upscaler auth login' first")
	}
	return user, nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}

// stderrLogger prints client warnings for the terminal
type stderrLogger struct{}

func (stderrLogger) Warn(msg string) {
	fmt.Fprintln(os.Stderr, "Warning:", msg)
}

func (stderrLogger) ErrorWithErr(err error, msg string) {
	fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", msg, err)
}
