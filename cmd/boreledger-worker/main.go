package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/boreledger/boreledger/pkg/config"
	"github.com/boreledger/boreledger/pkg/log"
	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/worker"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "boreledger-worker",
	Short:   "boreledger-worker parses a raw borelog upload into its stratum tree and depth index",
	Version: Version,
	RunE:    runParse,
}

func init() {
	config.BindFlags(rootCmd)
	cobra.OnInitialize(initLogging)

	rootCmd.Flags().String("project", "", "Project ID")
	rootCmd.Flags().String("borelog-id", "", "Borelog entity ID")
	rootCmd.Flags().Int("version", 0, "Version number this upload belongs to")
	rootCmd.Flags().String("object-key", "", "Object store key of the raw upload")
	rootCmd.Flags().String("file-type", "csv", "Raw upload format: csv or xlsx")
	rootCmd.Flags().String("requested-by", "", "User who requested the upload")
	rootCmd.Flags().String("job-code", "", "Job code recorded on the envelope")
	_ = rootCmd.MarkFlagRequired("project")
	_ = rootCmd.MarkFlagRequired("borelog-id")
	_ = rootCmd.MarkFlagRequired("version")
	_ = rootCmd.MarkFlagRequired("object-key")
}

func initLogging() {
	cfg := config.FromCommand(rootCmd)
	log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := config.FromCommand(cmd)
	store, err := objectstore.New(context.Background(), cfg.ObjectStoreConfig())
	if err != nil {
		return fmt.Errorf("boreledger-worker: building object store: %w", err)
	}

	project, _ := cmd.Flags().GetString("project")
	borelogID, _ := cmd.Flags().GetString("borelog-id")
	version, _ := cmd.Flags().GetInt("version")
	objectKey, _ := cmd.Flags().GetString("object-key")
	fileType, _ := cmd.Flags().GetString("file-type")
	requestedBy, _ := cmd.Flags().GetString("requested-by")
	jobCode, _ := cmd.Flags().GetString("job-code")

	w := worker.New(store)
	result, err := w.Process(context.Background(), worker.ParseRequest{
		ProjectID:   project,
		BorelogID:   borelogID,
		VersionNo:   version,
		ObjectKey:   objectKey,
		FileType:    worker.FileType(fileType),
		RequestedBy: requestedBy,
		JobCode:     jobCode,
	})
	if err != nil {
		return fmt.Errorf("boreledger-worker: %w", err)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	return nil
}
