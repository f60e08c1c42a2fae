package cmd

import (
	"fmt"

	"db-crud/internal/seed"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the sample student-records schema",
	Long: `Creates the sample tables (faculties, groups, curators, students,
semesters, teachers, subjects, grades). Tables that already exist are left
untouched.`,
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

		created, err := seed.CreateSampleSchema(cmd.Context(), s.handle.DB, s.handle.Dialect, s.catalog.Tables())
		for _, name := range created {
			fmt.Printf("[+] created %s\n", name)
		}
		if err != nil {
			return err
		}
		if len(created) == 0 {
			fmt.Println("Sample schema already present, nothing to do.")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
