package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"magazine-catalog-api/config"
	"magazine-catalog-api/models"
	"magazine-catalog-api/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// cliEnv carries the viper instance shared by every subcommand.
type cliEnv struct {
	v        *viper.Viper
	settings config.Settings
}

func (e *cliEnv) openDB() (*gorm.DB, error) {
	db, err := config.OpenDB(e.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := config.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func newRootCmd() *cobra.Command {
	env := &cliEnv{v: viper.New()}

	root := &cobra.Command{
		Use:           "catalog-cli",
		Short:         "Work with the magazine catalog from the command line",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err == nil {
				config.Logger.Debug("loaded .env")
			}
			env.settings = config.SettingsFrom(env.v)
			config.Logger.SetOutput(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.String("db-driver", "", "database driver (mysql or sqlite)")
	flags.String("db-path", "", "sqlite database file")
	_ = env.v.BindPFlag("DB_DRIVER", flags.Lookup("db-driver"))
	_ = env.v.BindPFlag("DB_PATH", flags.Lookup("db-path"))

	root.AddCommand(newParseCmd(), newImportCmd(env), newExportCmd(env), newMigrateCmd(env))
	return root
}

func parseFile(path string) (models.ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ParseResult{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return services.ParseMagazineXLSX(f), nil
	default:
		return services.ParseMagazineCSV(f), nil
	}
}

func printParseSummary(w io.Writer, result models.ParseResult) {
	issues := 0
	for _, m := range result.Magazines {
		issues += len(m.Issues)
	}
	fmt.Fprintf(w, "Rows: %d, magazines: %d, issues: %d\n", result.TotalRows, len(result.Magazines), issues)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  error   row %d %s: %s\n", e.Row, e.Field, e.Message)
	}
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "  warning row %d: %s\n", warn.Row, warn.Message)
	}
}

func newParseCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a CSV or XLSX import file and report what would be imported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := parseFile(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printParseSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full parse result as JSON")
	return cmd
}

func newImportCmd(env *cliEnv) *cobra.Command {
	var (
		dryRun       bool
		allowPartial bool
		actor        string
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Parse a file and import its magazines and issues in one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			result, err := parseFile(args[0])
			if err != nil {
				return err
			}
			printParseSummary(out, result)

			if len(result.Errors) > 0 && !allowPartial {
				return errors.New("file has row errors, fix them or pass --allow-partial")
			}
			if details := services.ValidateImportPayload(result.Magazines); len(details) > 0 {
				for _, d := range details {
					fmt.Fprintf(out, "  invalid %s: %s\n", d.Field, d.Message)
				}
				return errors.New("parsed data failed validation")
			}
			if dryRun {
				fmt.Fprintln(out, "Dry run, nothing written")
				return nil
			}

			db, err := env.openDB()
			if err != nil {
				return err
			}
			imported, err := services.NewMagazineImportService(db).ImportWithAudit(context.Background(), result.Magazines, "cli", actor)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintf(out, "Magazines created: %d, existing: %d\n", imported.CreatedMagazines, imported.SkippedMagazines)
			fmt.Fprintf(out, "Issues created: %d, skipped: %d\n", imported.CreatedIssues, imported.SkippedIssues)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate without writing to the database")
	cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "import valid rows even when some rows have errors")
	cmd.Flags().StringVar(&actor, "actor", os.Getenv("USER"), "actor recorded on the import run")
	return cmd
}

func newExportCmd(env *cliEnv) *cobra.Command {
	var (
		magazineID uint
		format     string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unsupported format %q", format)
			}
			db, err := env.openDB()
			if err != nil {
				return err
			}

			var idFilter *uint
			if magazineID > 0 {
				idFilter = &magazineID
			}
			rows, err := services.NewCatalogExportService(db).Rows(context.Background(), idFilter)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if format == "xlsx" {
				return services.WriteXLSX(w, rows)
			}
			return services.WriteCSV(w, rows)
		},
	}
	cmd.Flags().UintVar(&magazineID, "magazine-id", 0, "export a single magazine")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file (- for stdout)")
	return cmd
}

func newMigrateCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := env.openDB(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}
