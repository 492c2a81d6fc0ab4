package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
	"github.com/iota-uz/iota-facility/modules/tiers/infrastructure/persistence"
	"github.com/iota-uz/iota-facility/modules/tiers/infrastructure/spreadsheet"
	"github.com/iota-uz/iota-facility/modules/tiers/services"
	"github.com/iota-uz/iota-facility/pkg/composables"
	"github.com/iota-uz/iota-facility/pkg/configuration"
	"github.com/iota-uz/iota-facility/pkg/eventbus"
	"github.com/iota-uz/iota-facility/pkg/logging"
)

type importOptions struct {
	tenantID uuid.UUID
	userID   uint
	file     string
	apply    bool
	maxRows  int
}

type importResult struct {
	Status   string              `json:"status"`
	TenantID string              `json:"tenant_id"`
	File     string              `json:"file"`
	Summary  importsheet.Summary `json:"summary"`
}

func newImportCmd() *cobra.Command {
	var opts importOptions
	var tenant string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a tiers workbook (.xlsx) for one tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			if opts.maxRows <= 0 {
				opts.maxRows = conf.TiersImport.MaxRowsPerSheet
			}
			return runImport(cmd.Context(), conf, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Workbook path (required)")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Commit the import (default is dry-run)")
	cmd.Flags().UintVar(&opts.userID, "user", 0, "Acting user id recorded on the import event")
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", 0, "Row limit per sheet (default: TIERS_IMPORT_MAX_ROWS)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("file")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(strings.TrimSpace(tenant))
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --tenant: %w", err))
		}
		opts.tenantID = id
		return nil
	}

	return cmd
}

func runImport(ctx context.Context, conf *configuration.Configuration, opts importOptions, out io.Writer) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("open --file: %w", err))
	}
	defer f.Close()

	pool, err := connectDB(ctx, conf)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()

	logger := logging.ConsoleLogger(conf.LogrusLogLevel())
	svc := services.NewImportService(
		persistence.NewTiersRepository(),
		persistence.NewLookupRepository(),
		spreadsheet.ReadWorkbook,
		eventbus.NewEventPublisher(logger),
	)

	ctx = composables.WithPool(ctx, pool)
	ctx = composables.WithTenantID(ctx, opts.tenantID)
	if opts.userID != 0 {
		ctx = composables.WithUserID(ctx, opts.userID)
	}
	ctx = composables.WithLogger(ctx, logger.WithField("tenant_id", opts.tenantID.String()))

	return importWith(ctx, svc, f, opts, out)
}

type fileImporter interface {
	ImportFile(ctx context.Context, r io.Reader, opts services.ImportOptions) (importsheet.Summary, error)
}

func importWith(ctx context.Context, svc fileImporter, r io.Reader, opts importOptions, out io.Writer) error {
	summary, err := svc.ImportFile(ctx, r, services.ImportOptions{
		DryRun:          !opts.apply,
		MaxRowsPerSheet: opts.maxRows,
	})
	if err != nil {
		return classifyImportError(err)
	}

	status := "applied"
	if summary.DryRun {
		status = "dry_run"
	}
	return writeJSONLine(out, importResult{
		Status:   status,
		TenantID: opts.tenantID.String(),
		File:     opts.file,
		Summary:  summary,
	})
}
