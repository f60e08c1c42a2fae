package cmd

import (
	"fmt"
	"strings"
	"time"

	"db-crud/internal/schema"
	"db-crud/internal/seed"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	count  int
	dryRun bool
	tables []string
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the tables with random data through the record accessor",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger("")
		if err != nil {
			return err
		}

		s, err := connect(cmd.Context(), logger, true)
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Printf("Connected via %s (%s)\n", s.cfg.Driver, s.cfg.Name)

		// Flag > Config > Default
		targetCount := viper.GetInt("settings.default_count")
		if count > 0 {
			targetCount = count
		}

		// Filter: --tables, then settings.tables, then everything.
		targetTableNames := tables
		if len(targetTableNames) == 0 {
			targetTableNames = viper.GetStringSlice("settings.tables")
		}
		targetTables, err := filterTables(s.catalog.Ordered(), targetTableNames)
		if err != nil {
			return err
		}

		if dryRun {
			fmt.Println("Dry run, no data will be written. Fill order:")
			for i, t := range targetTables {
				fmt.Printf("[%02d] %s (Dependencies: %v)\n", i+1, t.Name, t.Dependencies)
			}
			return nil
		}

		logger.Info("starting fill", zap.Int("count", targetCount), zap.Int("tables", len(targetTables)))
		start := time.Now()

		uiprogress.Start()
		bar := uiprogress.AddBar(targetCount * len(targetTables)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Filling: "
		})

		results, err := seed.Fill(cmd.Context(), s.acc, targetTables, targetCount, func() {
			bar.Incr()
		}, logger)

		uiprogress.Stop()

		if err != nil {
			return err
		}

		fmt.Println("\nSummary Report (Dependency Order):")
		total := 0
		for i, r := range results {
			icon := "✓"
			if r.Status != "OK" {
				icon = "!"
			}
			fmt.Printf("[%s] [%02d/%02d] %-20s : %d rows (Target: %d) - %s\n",
				icon, i+1, len(results), r.Table, r.Inserted, r.Target, r.Status)
			if r.ErrorMsg != "" {
				fmt.Printf("    └ Error: %s\n", r.ErrorMsg)
			}
			total += r.Inserted
		}
		fmt.Println("--------------------------------------------------")
		fmt.Printf("Total Inserts: %d\n", total)
		logger.Info("fill done", zap.Int("inserted", total), zap.Duration("elapsed", time.Since(start)))

		return nil
	},
}

func init() {
	RootCmd.AddCommand(fillCmd)

	fillCmd.Flags().IntVar(&count, "count", 0, "Number of records to generate per table (overrides config)")
	fillCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the fill order without writing to the database")
	fillCmd.Flags().StringSliceVarP(&tables, "tables", "t", []string{}, "Specific tables to fill (comma-separated)")
}

// filterTables keeps the requested tables, preserving dependency order. An
// empty request keeps everything.
func filterTables(ordered []*schema.Table, names []string) ([]*schema.Table, error) {
	if len(names) == 0 {
		return ordered, nil
	}

	requested := make(map[string]bool, len(names))
	for _, n := range names {
		requested[strings.ToLower(n)] = true
	}

	var out []*schema.Table
	for _, t := range ordered {
		if requested[strings.ToLower(t.Name)] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no matching tables found for inputs: %v", names)
	}
	return out, nil
}
