package main

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/iota-uz/iota-facility/modules"
	"github.com/iota-uz/iota-facility/pkg/application"
	"github.com/iota-uz/iota-facility/pkg/configuration"
	"github.com/iota-uz/iota-facility/pkg/logging"
)

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations (or list them with --status)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conf := configuration.Use()

			pool, err := connectDB(ctx, conf)
			if err != nil {
				return withCode(exitDB, err)
			}
			defer pool.Close()

			app := application.New(&application.ApplicationOptions{Pool: pool, Logger: logging.ConsoleLogger(conf.LogrusLogLevel())})
			if err := modules.Load(app, modules.BuiltInModules...); err != nil {
				return err
			}

			if !status {
				if err := app.Migrations().Run(ctx); err != nil {
					return withCode(exitDB, err)
				}
				return writeJSONLine(cmd.OutOrStdout(), map[string]string{"status": "migrated"})
			}

			statuses, err := app.Migrations().Status(ctx)
			if err != nil {
				return withCode(exitDB, err)
			}
			for _, s := range statuses {
				applied := "pending"
				if !s.AppliedAt.IsZero() {
					applied = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%5d  %-40s %s\n", s.Source.Version, path.Base(s.Source.Path), applied)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "List migrations and whether they are applied")
	return cmd
}
