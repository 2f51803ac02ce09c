package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/pkg/metrics"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve the carousel once, write the CSV and upload it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		report, runErr := a.runner.Run(ctx, uuid.NewString())
		printSummary(report)
		pushMetrics(a.metrics)

		if runErr != nil {
			return fmt.Errorf("run failed: %w", runErr)
		}
		return nil
	},
}

func printSummary(report *entity.RunReport) {
	if report == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Title", "Source", "Link"})
	for i, rec := range report.Records {
		t.AppendRow(table.Row{i + 1, rec.Title, rec.Source, rec.Destination})
	}

	sources := make([]string, 0, len(report.BySource))
	for src := range report.BySource {
		sources = append(sources, string(src))
	}
	sort.Strings(sources)
	for _, src := range sources {
		t.AppendFooter(table.Row{"", "", src, report.BySource[entity.RecordSource(src)]})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	if report.OutputPath != "" {
		fmt.Printf("%d banners written to %s\n", len(report.Records), report.OutputPath)
	}
	if report.RemoteID != "" {
		fmt.Printf("uploaded as %s\n", report.RemoteID)
	}
}

func pushMetrics(m *metrics.Metrics) {
	if cfg.PushgatewayURL == "" {
		return
	}
	if err := push.New(cfg.PushgatewayURL, "banner_resolver").Gatherer(m.Registry).Push(); err != nil {
		log.Warn("failed to push metrics", zap.String("url", cfg.PushgatewayURL), zap.Error(err))
	}
}
