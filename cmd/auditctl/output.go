package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"kpiauditor/internal/domain"
	"kpiauditor/internal/export"
	"kpiauditor/internal/report"
)

// printProgress renders one status line for a snapshot.
func printProgress(job *domain.AuditJob) {
	if job == nil {
		return
	}
	fmt.Printf("[%3d%%] %-10s %s\n", job.Progress, job.Status, job.ProgressMessage)
}

// printJob renders the full snapshot: header, category table, and results.
func printJob(job *domain.AuditJob) {
	fmt.Printf("Audit:    %s\n", job.ID)
	fmt.Printf("College:  %s\n", job.CollegeName)
	fmt.Printf("Status:   %s\n", job.Status)
	fmt.Printf("Progress: %d%% %s\n", job.Progress, job.ProgressMessage)
	if job.TimeTakenSeconds != nil {
		fmt.Printf("Duration: %s\n", export.FormatTimeTaken(job.TimeTakenSeconds))
	}

	if len(job.Results) == 0 {
		return
	}

	summary := job.Summary
	if summary == nil {
		summary = report.Summarize(job.Results)
	}
	fmt.Printf("\nCoverage: %.1f%% (%d of %d KPIs found, %d high confidence)\n",
		summary.CoveragePercentage, summary.DataFound, summary.TotalKPIs, summary.HighConfidence)

	breakdown := report.Aggregate(job.Results)
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nCATEGORY\tFOUND\tTOTAL\tPERCENT")
	for _, bucket := range breakdown.Buckets() {
		label := bucket.Category
		if label == "" {
			label = "Other"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d%%\n", label, bucket.Found, bucket.Total, bucket.Percentage())
	}
	w.Flush()

	w = tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nKPI\tVALUE\tCONFIDENCE\tSOURCE")
	for i := range job.Results {
		r := &job.Results[i]
		source := r.SourceURL
		if !r.HasSourceURL() {
			source = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.KPIName, report.FormatValue(r.Value), r.EffectiveSystemConfidence(), source)
	}
	w.Flush()
}

// printList renders the audit history table.
func printList(entries []domain.AuditListEntry) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOLLEGE\tSTATUS\tCREATED\tCOVERAGE")
	for _, e := range entries {
		coverage := "-"
		if e.CoveragePercentage != nil {
			coverage = fmt.Sprintf("%.1f%%", *e.CoveragePercentage)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.CollegeName, e.Status, e.CreatedAt.Local().Format("2006-01-02 15:04"), coverage)
	}
	w.Flush()
}
