package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nasware/dpagent/internal/config"
	"github.com/nasware/dpagent/internal/daemon"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const defaultConfigPath = `C:\ProgramData\dpagent\config.yaml`

var (
	apiURL  string
	apiKey  string
	apiUser string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dpagent",
		Short: "dpagent - Windows disk management agent",
		Long: `dpagent is a local privileged agent for Windows disk management. It drives
the platform disk partitioning tool through generated scripts and exposes the
operations over an HTTP API and this CLI.`,
		Version: fmt.Sprintf("%s (built at %s)", version, buildTime),
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://127.0.0.1:8085", "Agent API base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("DPAGENT_API_KEY"), "API key for authenticated endpoints")
	rootCmd.PersistentFlags().StringVar(&apiUser, "user", "", "User name recorded in the audit log")

	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(diskCmd())
	rootCmd.AddCommand(partitionCmd())
	rootCmd.AddCommand(authCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getAPIClient() *APIClient {
	return NewAPIClient(apiURL, apiKey, localUser())
}

// resolveConfigPath keeps an explicitly chosen path as-is. For the default
// path it prefers a config.yaml in the working directory when the system
// location does not exist yet.
func resolveConfigPath(path string) string {
	if path != defaultConfigPath {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return path
}

func startCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the agent daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath(configFile))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			d, err := daemon.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := d.Start(ctx); err != nil {
				return fmt.Errorf("daemon error: %w", err)
			}

			sig := <-sigCh
			fmt.Printf("\nReceived signal %v, shutting down...\n", sig)
			cancel()
			return d.Shutdown(context.Background())
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", defaultConfigPath, "Path to config file")

	return cmd
}

func configCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "config-example",
		Short: "Write an example config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			if err := cfg.SaveExample(outPath); err != nil {
				return err
			}
			fmt.Printf("Wrote example config to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "config.yaml", "Output path")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dpagent %s\n", version)
			fmt.Printf("Build Time: %s\n", buildTime)
		},
	}
}
