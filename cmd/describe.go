package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var describeFormat string

var describeCmd = &cobra.Command{
	Use:   "describe [table...]",
	Short: "Print the reflected tables, columns and foreign keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger("")
		if err != nil {
			return err
		}

		s, err := connect(cmd.Context(), logger, false)
		if err != nil {
			return err
		}
		defer s.Close()

		out := s.catalog.Describe()
		if len(args) > 0 {
			for name := range out {
				if !contains(args, name) {
					delete(out, name)
				}
			}
			for _, name := range args {
				if _, err := s.catalog.Table(name); err != nil {
					logger.Warn("table not in catalog", zap.String("table", name))
				}
			}
		}

		switch describeFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(out)
		default:
			return fmt.Errorf("unsupported format %q (json or yaml)", describeFormat)
		}
	},
}

func init() {
	RootCmd.AddCommand(describeCmd)

	describeCmd.Flags().StringVarP(&describeFormat, "format", "f", "yaml", "output format: json or yaml")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
