package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iota-uz/iota-facility/modules/tiers/infrastructure/spreadsheet"
)

func newTemplateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty workbook with every sheet and header",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return withCode(exitUsage, fmt.Errorf("create --output: %w", err))
				}
				defer f.Close()
				w = f
			}
			if err := spreadsheet.WriteTemplate(w); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "Destination path (default: stdout)")
	return cmd
}
