package commands

import (
	"github.com/spf13/cobra"

	"github.com/owlback/registrar/cmd/registrar/handlers"
)

// Sample returns the command that writes a template workbook.
func Sample() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a template registration workbook",
		Long: `Write a template registration workbook with example rows.

The template contains a "Community Info" sheet with one example community and
a "Users" sheet with example caretakers. Replace the example rows with real
data before running 'registrar register'.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Sample(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "registration.xlsx", "Path for the template workbook")

	return cmd
}
