// Package schemadoc inspects a live database's catalog and produces a
// cross-linked, version-control-friendly markdown document set describing
// the schema.
//
// It supports PostgreSQL, MySQL/MariaDB, SQLite, SQL Server and Oracle.
// Extraction normalizes each engine's catalog into one canonical model,
// builds a bidirectional relationship graph from foreign keys and synonyms,
// and renders deterministic documentation: one file per object, an index
// per object category, per-schema overviews and a root summary.
//
// # Quick Start
//
//	docs, err := schemadoc.ExtractAndRender(context.Background(), schemadoc.Options{
//		Dialect:  "postgresql",
//		Host:     "localhost",
//		Database: "app",
//		User:     "postgres",
//		Password: "secret",
//	})
//
// The returned documents carry slash-separated paths relative to an output
// root; the caller owns writing them to disk. Rendering is a pure function
// of the snapshot, so identical snapshots always produce byte-identical
// output.
package schemadoc

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/arvenshaw/schemadoc/internal/catalog"
	"github.com/arvenshaw/schemadoc/internal/dialect"
	"github.com/arvenshaw/schemadoc/internal/dialect/mssql"
	"github.com/arvenshaw/schemadoc/internal/dialect/mysql"
	"github.com/arvenshaw/schemadoc/internal/dialect/oracle"
	"github.com/arvenshaw/schemadoc/internal/dialect/postgres"
	"github.com/arvenshaw/schemadoc/internal/dialect/sqlite"
	"github.com/arvenshaw/schemadoc/internal/extract"
	"github.com/arvenshaw/schemadoc/internal/filter"
	"github.com/arvenshaw/schemadoc/internal/model"
	"github.com/arvenshaw/schemadoc/internal/render"
)

// Options configures one extraction run.
//
// Dialect selects the engine and is required. Connection details come
// either from URL (a full connection string in the engine's own format) or
// from the discrete Host/Port/Database/User/Password fields; URL wins when
// both are set. SQLite uses Path instead.
type Options struct {
	// Dialect is one of "postgresql", "mysql", "sqlite", "mssql", "oracle".
	Dialect string

	// URL is a complete connection string in the dialect's native format.
	URL string

	Host     string
	Port     int
	Database string
	User     string
	Password string

	// SSLMode applies to PostgreSQL only ("disable", "require", ...).
	SSLMode string

	// Service is the Oracle service name; Database is used when empty.
	Service string

	// Path is the SQLite database file path.
	Path string

	// IncludeSchemas and ExcludeSchemas are mutually exclusive filters on
	// schema names. With neither set, everything except the engine's
	// system schemas is documented.
	IncludeSchemas []string
	ExcludeSchemas []string

	// ObjectTypes restricts extraction to the named categories ("tables",
	// "views", ...). Empty means all.
	ObjectTypes []string
}

// Snapshot re-exports the canonical model root so callers can inspect an
// extraction without importing internal packages.
type Snapshot = model.Snapshot

// Document is one rendered output file.
type Document = render.Document

// entry binds a dialect name to its adapter and reader constructor.
type entry struct {
	adapter dialect.Adapter
	open    func(ctx context.Context, opts Options) (catalog.Reader, error)
}

// registry is the explicit dialect table. It is a plain value: dialects
// are compiled in, never registered at init time.
func registry() map[string]entry {
	return map[string]entry{
		"postgresql": {
			adapter: postgres.NewAdapter(),
			open: func(ctx context.Context, opts Options) (catalog.Reader, error) {
				return postgres.Open(ctx, postgres.Config{
					URL:      opts.URL,
					Host:     opts.Host,
					Port:     opts.Port,
					Database: opts.Database,
					User:     opts.User,
					Password: opts.Password,
					SSLMode:  opts.SSLMode,
				})
			},
		},
		"mysql": {
			adapter: mysql.NewAdapter(),
			open: func(ctx context.Context, opts Options) (catalog.Reader, error) {
				return mysql.Open(ctx, mysql.Config{
					DSN:      opts.URL,
					Host:     opts.Host,
					Port:     opts.Port,
					Database: opts.Database,
					User:     opts.User,
					Password: opts.Password,
				})
			},
		},
		"sqlite": {
			adapter: sqlite.NewAdapter(),
			open: func(ctx context.Context, opts Options) (catalog.Reader, error) {
				path := opts.Path
				if path == "" {
					path = opts.Database
				}
				return sqlite.Open(ctx, path)
			},
		},
		"mssql": {
			adapter: mssql.NewAdapter(),
			open: func(ctx context.Context, opts Options) (catalog.Reader, error) {
				return mssql.Open(ctx, mssql.Config{
					URL:      opts.URL,
					Host:     opts.Host,
					Port:     opts.Port,
					Database: opts.Database,
					User:     opts.User,
					Password: opts.Password,
				})
			},
		},
		"oracle": {
			adapter: oracle.NewAdapter(),
			open: func(ctx context.Context, opts Options) (catalog.Reader, error) {
				service := opts.Service
				if service == "" {
					service = opts.Database
				}
				return oracle.Open(ctx, oracle.Config{
					URL:      opts.URL,
					Host:     opts.Host,
					Port:     opts.Port,
					Service:  service,
					User:     opts.User,
					Password: opts.Password,
				})
			},
		},
	}
}

// Dialects returns the supported dialect names, sorted.
func Dialects() []string {
	reg := registry()
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// selection builds the filter from the options, resolving object type
// names to kinds.
func selection(opts Options) (filter.Selection, error) {
	sel := filter.Selection{
		IncludeSchemas: opts.IncludeSchemas,
		ExcludeSchemas: opts.ExcludeSchemas,
	}
	for _, name := range opts.ObjectTypes {
		if strings.EqualFold(strings.TrimSpace(name), "all") {
			sel.Kinds = nil
			break
		}
		kind, ok := model.ParseKind(name)
		if !ok {
			return filter.Selection{}, fmt.Errorf("unknown object type %q", name)
		}
		sel.Kinds = append(sel.Kinds, kind)
	}
	return sel, nil
}

// Extract connects to the database described by opts, pulls its catalog,
// normalizes it and returns the sealed snapshot. The connection is closed
// before returning.
func Extract(ctx context.Context, opts Options) (*Snapshot, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Dialect))
	ent, ok := registry()[name]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (supported: %s)", opts.Dialect, strings.Join(Dialects(), ", "))
	}

	sel, err := selection(opts)
	if err != nil {
		return nil, err
	}
	if err := sel.Validate(ent.adapter.Fold); err != nil {
		return nil, err
	}

	reader, err := ent.open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", name, err)
	}
	defer func() { _ = reader.Close() }()

	return extract.Extract(ctx, reader, ent.adapter, sel)
}

// Render turns a snapshot into the full markdown document set. It never
// fails on a sealed snapshot.
func Render(snap *Snapshot) []Document {
	return render.Render(snap)
}

// ExtractAndRender runs Extract followed by Render.
func ExtractAndRender(ctx context.Context, opts Options) ([]Document, error) {
	snap, err := Extract(ctx, opts)
	if err != nil {
		return nil, err
	}
	return Render(snap), nil
}
