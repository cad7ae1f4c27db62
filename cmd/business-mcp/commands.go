// cmd/business-mcp/commands.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"business-assistant/internal/catalog"
	"business-assistant/internal/common/config"
	"business-assistant/internal/transport/httpapi"
	"business-assistant/internal/transport/stdio"
	collectbusinessdata "business-assistant/internal/workers/assistant/collect-business-data"
	parsebusinessquery "business-assistant/internal/workers/assistant/parse-business-query"
	"business-assistant/pkg/registry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the protocol and the assistant over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, services, log, cleanup, err := start(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := services.Config
		server := httpapi.New(services.Dispatcher, services.Assistant, log, httpapi.Options{
			RequestTimeout: config.GetDuration(cfg.Server.RPCTimeout),
			Gatherer:       services.Gatherer,
			Checks:         services.Checks,
		})
		return server.Run(ctx, cfg.Server.HTTPAddress)
	},
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve the protocol over stdin/stdout, one JSON message per line",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, services, log, cleanup, err := start(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		return stdio.New(services.Dispatcher, os.Stdout, log).Serve(ctx, os.Stdin)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer one free-text question and print the collected data",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, services, _, cleanup, err := start(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		answer, err := services.Assistant.Answer(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	},
}

var catalogFlags struct {
	output  string
	version string
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print or write the activity and tool registry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := buildRegistry(catalogFlags.version, time.Now())
		if err != nil {
			return err
		}
		if catalogFlags.output != "" {
			if err := registry.SaveRegistry(catalogFlags.output, reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry written to %s\n", catalogFlags.output)
			return nil
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reg)
	},
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFlags.output, "output", "o", "", "Write the registry to this file instead of stdout")
	catalogCmd.Flags().StringVar(&catalogFlags.version, "version", "1.0.0", "Registry version")
}

func buildRegistry(version string, now time.Time) (*registry.ActivityRegistry, error) {
	parseSchema, err := registry.SchemaMap(parsebusinessquery.GetInputSchema())
	if err != nil {
		return nil, err
	}
	collectSchema, err := registry.SchemaMap(collectbusinessdata.GetInputSchema())
	if err != nil {
		return nil, err
	}

	return registry.Build(version, now, catalog.New(),
		registry.Activity{
			ID:          parsebusinessquery.TaskType,
			DisplayName: "Parse Business Query",
			Description: "Classifies a free-text query and resolves its capabilities and time window",
			Category:    "assistant",
			Version:     "1.0.0",
			TaskType:    parsebusinessquery.TaskType,
			InputSchema: parseSchema,
			ErrorCodes:  []string{"INVALID_INPUT"},
			Timeout:     parsebusinessquery.DefaultConfig().Timeout.String(),
			Retries:     0,
			Tags:        []string{"intent", "time-window"},
		},
		registry.Activity{
			ID:          collectbusinessdata.TaskType,
			DisplayName: "Collect Business Data",
			Description: "Runs the tool calls planned for the capabilities and returns the business data bag",
			Category:    "assistant",
			Version:     "1.0.0",
			TaskType:    collectbusinessdata.TaskType,
			InputSchema: collectSchema,
			ErrorCodes:  []string{"INVALID_INPUT", "UNKNOWN_CAPABILITY", "COLLECTION_FAILED", "COLLECTION_TIMEOUT"},
			Timeout:     collectbusinessdata.DefaultConfig().Timeout.String(),
			Retries:     3,
			Tags:        []string{"orchestration", "data-access"},
		},
	)
}
