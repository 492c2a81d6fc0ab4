package application

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

var ErrNoPool = errors.New("migrations: database pool is not configured")

// MigrationManager collects the goose-annotated schema files embedded by each
// module and applies them in version order.
type MigrationManager interface {
	RegisterSchema(migrations ...*embed.FS)
	Run(ctx context.Context) error
	Status(ctx context.Context) ([]*goose.MigrationStatus, error)
}

func NewMigrationManager(pool *pgxpool.Pool, logger *logrus.Logger) MigrationManager {
	return &migrationManager{pool: pool, logger: logger}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	logger  *logrus.Logger
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(migrations ...*embed.FS) {
	m.schemas = append(m.schemas, migrations...)
}

func (m *migrationManager) Run(ctx context.Context) error {
	return m.each(ctx, func(p *goose.Provider) error {
		results, err := p.Up(ctx)
		for _, r := range results {
			if r.Error != nil {
				continue
			}
			m.logger.WithFields(logrus.Fields{
				"version":  r.Source.Version,
				"file":     path.Base(r.Source.Path),
				"duration": r.Duration,
			}).Info("migration applied")
		}
		return err
	})
}

func (m *migrationManager) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	var out []*goose.MigrationStatus
	err := m.each(ctx, func(p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return err
		}
		out = append(out, statuses...)
		return nil
	})
	return out, err
}

func (m *migrationManager) each(ctx context.Context, fn func(p *goose.Provider) error) error {
	if m.pool == nil {
		return ErrNoPool
	}
	db := stdlib.OpenDBFromPool(m.pool)
	defer func(db *sql.DB) {
		_ = db.Close()
	}(db)

	for _, schema := range m.schemas {
		dirs, err := schemaDirs(schema)
		if err != nil {
			return err
		}
		for _, dir := range dirs {
			sub, err := fs.Sub(schema, dir)
			if err != nil {
				return err
			}
			provider, err := goose.NewProvider(goose.DialectPostgres, db, sub)
			if err != nil {
				return err
			}
			if err := fn(provider); err != nil {
				return err
			}
		}
	}
	return ctx.Err()
}

// schemaDirs returns every directory of fsys holding at least one .sql file.
func schemaDirs(fsys fs.FS) ([]string, error) {
	seen := map[string]struct{}{}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".sql") {
			seen[path.Dir(p)] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, nil
}
