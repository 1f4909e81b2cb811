package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/boreledger/boreledger/pkg/config"
	"github.com/boreledger/boreledger/pkg/dispatcher"
	"github.com/boreledger/boreledger/pkg/entityrepo"
	"github.com/boreledger/boreledger/pkg/ingest"
	"github.com/boreledger/boreledger/pkg/log"
	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/repository"
	"github.com/boreledger/boreledger/pkg/types"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "boreledger",
	Short:   "boreledger manages immutable, versioned geotechnical borelog records",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("boreledger version %s\nCommit: %s\n", Version, Commit))
	config.BindFlags(rootCmd)
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(createCmd, updateCmd, approveCmd, rejectCmd, getCmd, listCmd, ingestCSVCmd)
}

func initLogging() {
	cfg := config.FromCommand(rootCmd)
	level := log.Level(cfg.LogLevel)
	log.Init(log.Config{Level: level, JSONOutput: cfg.LogJSON})
}

func buildDispatcher(cmd *cobra.Command) (*dispatcher.Dispatcher, error) {
	cfg := config.FromCommand(cmd)
	store, err := objectstore.New(context.Background(), cfg.ObjectStoreConfig())
	if err != nil {
		return nil, fmt.Errorf("boreledger: building object store: %w", err)
	}
	entities := entityrepo.New(repository.New(store))
	return dispatcher.New(entities, ingest.New(entities)), nil
}

func printResponse(resp dispatcher.Response) error {
	var pretty map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
	} else {
		fmt.Println(resp.Body)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("boreledger: request failed with status %d", resp.StatusCode)
	}
	return nil
}

func entityTypeFlag(cmd *cobra.Command) types.EntityType {
	v, _ := cmd.Flags().GetString("entity-type")
	return types.EntityType(v)
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().String("project", "", "Project ID")
	cmd.Flags().String("entity-type", string(types.EntityBorelog), "Entity type: borelog, geological_log, lab_test")
	cmd.Flags().String("entity-id", "", "Entity ID")
	cmd.Flags().String("user", "", "Acting user")
	cmd.Flags().String("comment", "", "Change comment")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("entity-id")
	_ = cmd.MarkFlagRequired("user")
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new record in draft status",
	RunE: func(cmd *cobra.Command, args []string) error {
		payloadJSON, _ := cmd.Flags().GetString("payload")
		var payload types.Row
		if payloadJSON != "" {
			if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
				return fmt.Errorf("boreledger: invalid --payload JSON: %w", err)
			}
		}
		d, err := buildDispatcher(cmd)
		if err != nil {
			return err
		}
		project, _ := cmd.Flags().GetString("project")
		entityID, _ := cmd.Flags().GetString("entity-id")
		user, _ := cmd.Flags().GetString("user")
		comment, _ := cmd.Flags().GetString("comment")
		resp := d.Dispatch(context.Background(), dispatcher.Request{
			Action: dispatcher.ActionCreate, EntityType: entityTypeFlag(cmd),
			ProjectID: project, EntityID: entityID, Payload: payload, User: user, Comment: comment,
		})
		return printResponse(resp)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Write a new draft version onto an existing record",
	RunE: func(cmd *cobra.Command, args []string) error {
		payloadJSON, _ := cmd.Flags().GetString("payload")
		var payload types.Row
		if payloadJSON != "" {
			if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
				return fmt.Errorf("boreledger: invalid --payload JSON: %w", err)
			}
		}
		d, err := buildDispatcher(cmd)
		if err != nil {
			return err
		}
		project, _ := cmd.Flags().GetString("project")
		entityID, _ := cmd.Flags().GetString("entity-id")
		user, _ := cmd.Flags().GetString("user")
		comment, _ := cmd.Flags().GetString("comment")
		resp := d.Dispatch(context.Background(), dispatcher.Request{
			Action: dispatcher.ActionUpdate, EntityType: entityTypeFlag(cmd),
			ProjectID: project, EntityID: entityID, Payload: payload, User: user, Comment: comment,
		})
		return printResponse(resp)
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve the current draft version",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDispatcher(cmd)
		if err != nil {
			return err
		}
		project, _ := cmd.Flags().GetString("project")
		entityID, _ := cmd.Flags().GetString("entity-id")
		user, _ := cmd.Flags().GetString("user")
		comment, _ := cmd.Flags().GetString("comment")
		resp := d.Dispatch(context.Background(), dispatcher.Request{
			Action: dispatcher.ActionApprove, EntityType: entityTypeFlag(cmd),
			ProjectID: project, EntityID: entityID, User: user, Comment: comment,
		})
		return printResponse(resp)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Reject the current draft version",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDispatcher(cmd)
		if err != nil {
			return err
		}
		project, _ := cmd.Flags().GetString("project")
		entityID, _ := cmd.Flags().GetString("entity-id")
		user, _ := cmd.Flags().GetString("user")
		comment, _ := cmd.Flags().GetString("comment")
		resp := d.Dispatch(context.Background(), dispatcher.Request{
			Action: dispatcher.ActionReject, EntityType: entityTypeFlag(cmd),
			ProjectID: project, EntityID: entityID, User: user, Comment: comment,
		})
		return printResponse(resp)
	},
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch the latest version of a record",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDispatcher(cmd)
		if err != nil {
			return err
		}
		project, _ := cmd.Flags().GetString("project")
		entityID, _ := cmd.Flags().GetString("entity-id")
		resp := d.Dispatch(context.Background(), dispatcher.Request{
			Action: dispatcher.ActionGet, EntityType: entityTypeFlag(cmd),
			ProjectID: project, EntityID: entityID,
		})
		return printResponse(resp)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List records for a project and entity type",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDispatcher(cmd)
		if err != nil {
			return err
		}
		project, _ := cmd.Flags().GetString("project")
		resp := d.Dispatch(context.Background(), dispatcher.Request{
			Action: dispatcher.ActionList, EntityType: entityTypeFlag(cmd), ProjectID: project,
		})
		return printResponse(resp)
	},
}

var ingestCSVCmd = &cobra.Command{
	Use:   "ingest-csv",
	Short: "Bulk-ingest a CSV file into a record",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		table, _ := cmd.Flags().GetString("table")
		skipErrors, _ := cmd.Flags().GetBool("skip-errors")
		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("boreledger: reading %q: %w", path, err)
		}
		d, err := buildDispatcher(cmd)
		if err != nil {
			return err
		}
		project, _ := cmd.Flags().GetString("project")
		entityID, _ := cmd.Flags().GetString("entity-id")
		user, _ := cmd.Flags().GetString("user")
		comment, _ := cmd.Flags().GetString("comment")
		resp := d.Dispatch(context.Background(), dispatcher.Request{
			Action: dispatcher.ActionIngestCSV, EntityType: entityTypeFlag(cmd),
			ProjectID: project, EntityID: entityID, CSVBody: string(body), TableName: table,
			User: user, Comment: comment, SkipErrors: skipErrors,
		})
		return printResponse(resp)
	},
}

func init() {
	for _, c := range []*cobra.Command{createCmd, updateCmd, approveCmd, rejectCmd, getCmd, listCmd, ingestCSVCmd} {
		addRecordFlags(c)
	}
	createCmd.Flags().String("payload", "", "JSON-encoded row payload")
	updateCmd.Flags().String("payload", "", "JSON-encoded row payload")
	ingestCSVCmd.Flags().String("file", "", "Path to the CSV file to ingest")
	ingestCSVCmd.Flags().String("table", "", "Schema table name the CSV rows map to")
	ingestCSVCmd.Flags().Bool("skip-errors", true, "Continue past invalid rows instead of aborting on the first one")
	_ = ingestCSVCmd.MarkFlagRequired("file")
	_ = ingestCSVCmd.MarkFlagRequired("table")
}
