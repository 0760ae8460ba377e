package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/arvenshaw/schemadoc"
)

const maxConcurrentWrites = 16

var rootCmd = &cobra.Command{
	Use:   "schemadoc",
	Short: "Generate markdown documentation from a live database schema",
	Long: `schemadoc connects to a PostgreSQL, MySQL, SQLite, SQL Server or Oracle
database, extracts its catalog (tables, views, routines, triggers, types,
sequences, synonyms, security principals) and writes a cross-linked set of
markdown documents describing the schema.

Connection settings can come from flags, a .schemadoc.yaml config file,
SCHEMADOC_* environment variables, or a .env file.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.String("dialect", "", "database dialect: "+strings.Join(schemadoc.Dialects(), ", "))
	f.String("url", "", "full connection string in the dialect's native format")
	f.String("host", "", "database host")
	f.Int("port", 0, "database port (dialect default when 0)")
	f.String("database", "", "database name")
	f.String("user", "", "database user")
	f.String("password", "", "database password")
	f.String("sslmode", "", "PostgreSQL SSL mode")
	f.String("service", "", "Oracle service name")
	f.String("sqlite", "", "SQLite database file path")
	f.StringSlice("include-schemas", nil, "schemas to document (default: all non-system)")
	f.StringSlice("exclude-schemas", nil, "schemas to skip")
	f.StringSlice("object-types", nil, "object categories to document (tables, views, ..., all)")
	f.StringP("output-dir", "o", "schema-docs", "output directory")
	f.Bool("dry-run", false, "render and list paths without writing files")
	f.BoolP("verbose", "v", false, "debug logging")

	cobra.CheckErr(viper.BindPFlags(f))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the layered configuration: flags win over env vars,
// env vars over the config file, the config file over .env.
func loadConfig() {
	viper.SetConfigName(".schemadoc")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("SCHEMADOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(cmd *cobra.Command, args []string) error {
	loadConfig()
	log := newLogger(viper.GetBool("verbose"))

	opts := schemadoc.Options{
		Dialect:        viper.GetString("dialect"),
		URL:            viper.GetString("url"),
		Host:           viper.GetString("host"),
		Port:           viper.GetInt("port"),
		Database:       viper.GetString("database"),
		User:           viper.GetString("user"),
		Password:       viper.GetString("password"),
		SSLMode:        viper.GetString("sslmode"),
		Service:        viper.GetString("service"),
		Path:           viper.GetString("sqlite"),
		IncludeSchemas: viper.GetStringSlice("include-schemas"),
		ExcludeSchemas: viper.GetStringSlice("exclude-schemas"),
		ObjectTypes:    viper.GetStringSlice("object-types"),
	}
	if opts.Dialect == "" {
		return fmt.Errorf("--dialect is required (one of: %s)", strings.Join(schemadoc.Dialects(), ", "))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log.Info("extracting schema", "dialect", opts.Dialect, "database", opts.Database)
	snap, err := schemadoc.Extract(ctx, opts)
	if err != nil {
		return err
	}

	for _, w := range snap.Warnings {
		log.Warn(w.Message, "op", w.Op)
	}

	docs := schemadoc.Render(snap)
	log.Info("rendered documentation",
		"documents", len(docs),
		"schemas", len(snap.Schemas),
		"warnings", len(snap.Warnings))

	outputDir := viper.GetString("output-dir")
	if viper.GetBool("dry-run") {
		for _, doc := range docs {
			fmt.Println(filepath.Join(outputDir, filepath.FromSlash(doc.Path)))
		}
		return nil
	}

	if err := writeDocs(ctx, outputDir, docs); err != nil {
		return err
	}
	log.Info("wrote documentation", "dir", outputDir)
	return nil
}

// writeDocs writes every document under dir, creating category directories
// first so the concurrent writers never race on MkdirAll.
func writeDocs(ctx context.Context, dir string, docs []schemadoc.Document) error {
	seen := map[string]bool{}
	for _, doc := range docs {
		sub := filepath.Dir(filepath.Join(dir, filepath.FromSlash(doc.Path)))
		if seen[sub] {
			continue
		}
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		seen[sub] = true
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentWrites)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			path := filepath.Join(dir, filepath.FromSlash(doc.Path))
			if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", doc.Path, err)
			}
			return nil
		})
	}
	return g.Wait()
}
