package cmd

import (
	"context"
	"fmt"
	"time"

	"geo-manager/core/config"
	"geo-manager/core/database"
	"geo-manager/core/logger"
	"geo-manager/core/reconcile"
	"geo-manager/core/storage"
	"geo-manager/feature/geography/extract"
	"geo-manager/feature/geography/merge"
	"geo-manager/feature/geography/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Flags shared across reconcile subcommands
	sourceRef        string
	countriesRef     string
	continentFilter  string
	countryFilter    string
	reconcileWorkers int
	dryRunReconcile  bool
	migrateSchema    bool
	snapshotDatasets bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the geographic hierarchy against external datasets",
	Long: `Reconcile one level of the hierarchy against an external dataset.

Each run converges the stored data toward the dataset without ever losing
curated values: new entities are inserted, known ones are enriched, and
conflicting or ambiguous records are counted and skipped. Re-running with
the same dataset is a no-op.

Dataset references may be http(s) URLs, local file paths, or s3://bucket/key
objects in the configured storage backend.`,
}

var continentsReconcileCmd = &cobra.Command{
	Use:   "continents",
	Short: "Reconcile the builtin continent seed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd.Context(), func(ctx context.Context, r *merge.Reconciler) (reconcile.Report, error) {
			return r.Continents(ctx)
		})
	},
}

var countriesReconcileCmd = &cobra.Command{
	Use:   "countries",
	Short: "Reconcile countries of one continent from a countries dataset",
	Long: `Reconcile the countries dataset into the scope of one continent.

Examples:
  # From a public dataset
  reconcile countries --source https://example.org/countries.json --continent Asia

  # From object storage
  reconcile countries --source s3://geodata/datasets/countries.json --continent Europe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd.Context(), func(ctx context.Context, r *merge.Reconciler) (reconcile.Report, error) {
			return r.Countries(ctx, sourceRef, continentFilter)
		})
	},
}

var provincesReconcileCmd = &cobra.Command{
	Use:   "provinces",
	Short: "Reconcile provinces from a flat states dataset",
	Long: `Reconcile the flat states dataset into every country scope, or into a
single country selected with --country. Country scopes run concurrently.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd.Context(), func(ctx context.Context, r *merge.Reconciler) (reconcile.Report, error) {
			return r.Provinces(ctx, sourceRef, countryFilter)
		})
	},
}

var citiesReconcileCmd = &cobra.Command{
	Use:   "cities",
	Short: "Reconcile cities from a nested states dataset",
	Long: `Reconcile the states-with-nested-cities dataset into every province
scope. The dataset identifies countries by its own numeric ids, so the
countries dataset is needed as well to join them back to ISO2 codes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd.Context(), func(ctx context.Context, r *merge.Reconciler) (reconcile.Report, error) {
			return r.Cities(ctx, sourceRef, countriesRef, countryFilter)
		})
	},
}

func init() {
	reconcileCmd.PersistentFlags().BoolVar(&dryRunReconcile, "dry-run", false, "Plan and report without writing")
	reconcileCmd.PersistentFlags().BoolVar(&migrateSchema, "migrate", false, "Run schema migration before reconciling")
	reconcileCmd.PersistentFlags().IntVar(&reconcileWorkers, "concurrency", 4, "Parent scopes reconciled in parallel")
	reconcileCmd.PersistentFlags().BoolVar(&snapshotDatasets, "snapshot", false, "Publish fetched datasets into the storage bucket for replay")

	for _, c := range []*cobra.Command{countriesReconcileCmd, provincesReconcileCmd, citiesReconcileCmd} {
		c.Flags().StringVar(&sourceRef, "source", "", "Dataset reference (http(s), file path, or s3://bucket/key)")
		_ = c.MarkFlagRequired("source")
	}

	countriesReconcileCmd.Flags().StringVar(&continentFilter, "continent", "", "Continent owning the countries")
	_ = countriesReconcileCmd.MarkFlagRequired("continent")

	provincesReconcileCmd.Flags().StringVar(&countryFilter, "country", "", "Limit to one country by ISO2 code")

	citiesReconcileCmd.Flags().StringVar(&countriesRef, "countries-source", "", "Countries dataset used to join country ids to ISO2 codes")
	_ = citiesReconcileCmd.MarkFlagRequired("countries-source")
	citiesReconcileCmd.Flags().StringVar(&countryFilter, "country", "", "Limit to one country by ISO2 code")

	reconcileCmd.AddCommand(continentsReconcileCmd)
	reconcileCmd.AddCommand(countriesReconcileCmd)
	reconcileCmd.AddCommand(provincesReconcileCmd)
	reconcileCmd.AddCommand(citiesReconcileCmd)

	RootCmd.AddCommand(reconcileCmd)
}

// runReconcile wires config, logger, database and storage, then hands the
// reconciler to the level-specific run function and logs its report.
func runReconcile(ctx context.Context, run func(context.Context, *merge.Reconciler) (reconcile.Report, error)) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := prepareSchema(db); err != nil {
		return err
	}

	// Storage is only needed for s3:// dataset references and snapshot
	// publishing; a missing backend should not block file or http runs.
	var store storage.Client
	if client, err := storage.NewClient(cfg.Storage); err != nil {
		if snapshotDatasets {
			return fmt.Errorf("snapshots requested but storage is unavailable: %w", err)
		}
		l.Warn("Storage backend unavailable, s3 dataset references will fail", zap.Error(err))
	} else {
		store = client
	}

	extractor := extract.New(store, 30*time.Second)
	if snapshotDatasets {
		extractor.SnapshotTo(cfg.Storage.Bucket)
	}

	reconciler := merge.NewReconciler(db, extractor, l)
	reconciler.Concurrency = reconcileWorkers
	reconciler.DryRun = dryRunReconcile

	started := time.Now()
	report, err := run(ctx, reconciler)
	if err != nil {
		return err
	}

	l.Info("Reconciliation finished", append(report.Fields(),
		zap.Int("total", report.Total()),
		zap.Duration("took", time.Since(started)),
	)...)
	return nil
}

// prepareSchema migrates when asked and otherwise verifies that the
// normalized-key columns the merge path depends on actually exist.
func prepareSchema(db *gorm.DB) error {
	if migrateSchema {
		return db.AutoMigrate(
			&models.Continent{},
			&models.Country{},
			&models.Province{},
			&models.City{},
		)
	}

	for _, kind := range []models.Kind{models.KindContinent, models.KindCountry, models.KindProvince, models.KindCity} {
		ok, err := database.HasColumn(db, kind.Table(), "name_key")
		if err != nil {
			return fmt.Errorf("inspecting table %s: %w", kind.Table(), err)
		}
		if !ok {
			return fmt.Errorf("table %s is missing the name_key column, run with --migrate first", kind.Table())
		}
	}
	return nil
}
