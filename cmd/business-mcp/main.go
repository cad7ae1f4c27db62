// cmd/business-mcp/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flags struct {
	configPath string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:           "business-mcp",
	Short:         "Business data protocol server and assistant",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to config file (default: configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override logging.level")

	rootCmd.AddCommand(serveCmd, stdioCmd, askCmd, catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
