package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kpiauditor/internal/domain"
	"kpiauditor/internal/export"
	"kpiauditor/internal/storage"
)

var (
	exportFormat  string
	exportDir     string
	exportArchive bool
)

// exportCmd writes a finished audit to a report file
var exportCmd = &cobra.Command{
	Use:   "export <audit-id>",
	Short: "Export a finished audit as CSV or JSON",
	Long: `Export a finished audit as a CSV or JSON report.

Reports land in the configured export directory. With --archive the report is
also uploaded to the configured S3-compatible archive bucket.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Report format: csv or json")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "Output directory (overrides config)")
	exportCmd.Flags().BoolVar(&exportArchive, "archive", false, "Also upload to the S3 archive bucket")
}

func runExport(cmd *cobra.Command, args []string) error {
	ec, cfg, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	job, err := ec.GetAudit(ctx, args[0])
	if err != nil {
		return err
	}
	if job.Status == domain.StatusProcessing {
		return fmt.Errorf("audit %s is still processing; export needs a finished audit", job.ID)
	}

	auditDate := job.CreatedAt
	if auditDate.IsZero() {
		auditDate = time.Now()
	}

	var data []byte
	var ext, contentType string
	switch exportFormat {
	case "csv":
		data = export.EncodeCSV(job, auditDate)
		ext, contentType = ".csv", "text/csv"
	case "json":
		data, err = export.EncodeJSON(job, auditDate)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		ext, contentType = ".json", "application/json"
	default:
		return fmt.Errorf("unknown format %q: want csv or json", exportFormat)
	}

	dir := cfg.Export.Dir
	if exportDir != "" {
		dir = exportDir
	}
	sink, err := export.NewDirSink(dir)
	if err != nil {
		return err
	}

	name := export.FileName(job.CollegeName, auditDate, ext)
	location, err := sink.Write(ctx, name, data, contentType)
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", location)

	if exportArchive {
		if !cfg.Export.Archive.Enabled {
			return fmt.Errorf("archive requested but export.archive is not configured")
		}
		archCfg := cfg.Export.Archive
		store, err := storage.New(&storage.S3Config{
			Endpoint:  archCfg.Endpoint,
			AccessKey: archCfg.AccessKey,
			SecretKey: archCfg.SecretKey,
			UseSSL:    archCfg.UseSSL,
			Bucket:    archCfg.Bucket,
			Region:    archCfg.Region,
		})
		if err != nil {
			return fmt.Errorf("init archive storage: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("ensure archive bucket: %w", err)
		}
		url, err := export.NewS3Sink(store, archCfg.Prefix).Write(ctx, name, data, contentType)
		if err != nil {
			return fmt.Errorf("archive upload: %w", err)
		}
		fmt.Printf("Report archived at %s\n", url)
	}
	return nil
}
