// Package importer seeds the workout content database from catalog files: a
// JSON document listing step definitions and workout packages. Re-running an
// import is safe; rows are matched by id and updated in place.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/models"
)

// Stats tracks import progress.
type Stats struct {
	StepsInserted    int
	StepsUpdated     int
	PackagesInserted int
	PackagesUpdated  int
}

// Store is the write side the importer needs.
type Store interface {
	ListSteps(ctx context.Context) ([]models.StepDefinition, error)
	UpsertStep(ctx context.Context, s models.StepDefinition) (bool, error)
	UpsertPackage(ctx context.Context, p models.WorkoutPackage) (bool, error)
}

// catalogFile is the on-disk import format.
type catalogFile struct {
	Steps    []models.StepDefinition `json:"steps"`
	Packages []models.WorkoutPackage `json:"packages"`
}

// Importer loads catalog files into the database.
type Importer struct {
	store  Store
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(store Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun}
}

// Import reads one catalog file, validates it and writes it to the database.
// Validation happens before any write, so a bad file changes nothing.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading catalog: %w", err)
	}

	var catalog catalogFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		return &imp.stats, fmt.Errorf("parsing catalog: %w", err)
	}

	existing, err := imp.store.ListSteps(ctx)
	if err != nil {
		return &imp.stats, fmt.Errorf("listing existing steps: %w", err)
	}

	if err := validateCatalog(&catalog, existing); err != nil {
		return &imp.stats, err
	}

	if imp.dryRun {
		imp.log.Info("dry run: catalog valid",
			"steps", len(catalog.Steps), "packages", len(catalog.Packages))
		return &imp.stats, nil
	}

	for _, step := range catalog.Steps {
		inserted, err := imp.store.UpsertStep(ctx, step)
		if err != nil {
			return &imp.stats, fmt.Errorf("step %q: %w", step.Title, err)
		}
		if inserted {
			imp.stats.StepsInserted++
		} else {
			imp.stats.StepsUpdated++
		}
	}

	for _, pkg := range catalog.Packages {
		inserted, err := imp.store.UpsertPackage(ctx, pkg)
		if err != nil {
			return &imp.stats, fmt.Errorf("package %q: %w", pkg.Title, err)
		}
		if inserted {
			imp.stats.PackagesInserted++
		} else {
			imp.stats.PackagesUpdated++
		}
	}

	imp.log.Info("catalog imported",
		"steps_inserted", imp.stats.StepsInserted, "steps_updated", imp.stats.StepsUpdated,
		"packages_inserted", imp.stats.PackagesInserted, "packages_updated", imp.stats.PackagesUpdated)
	return &imp.stats, nil
}

// validateCatalog rejects steps without required fields and package timelines
// referencing steps that exist neither in the file nor in the database.
func validateCatalog(catalog *catalogFile, existing []models.StepDefinition) error {
	known := make(map[uuid.UUID]bool, len(existing)+len(catalog.Steps))
	for _, s := range existing {
		known[s.ID] = true
	}

	for i := range catalog.Steps {
		step := &catalog.Steps[i]
		if step.ID == uuid.Nil {
			step.ID = uuid.New()
		}
		if step.Title == "" {
			return fmt.Errorf("step %s: title is required", step.ID)
		}
		if step.ExerciseType == "" {
			step.ExerciseType = models.ExerciseTypeDuration
		}
		known[step.ID] = true
	}

	for i := range catalog.Packages {
		pkg := &catalog.Packages[i]
		if pkg.ID == uuid.Nil {
			pkg.ID = uuid.New()
		}
		if pkg.Title == "" {
			return fmt.Errorf("package %s: title is required", pkg.ID)
		}
		for _, entry := range pkg.Timeline {
			if !known[entry.StepID] {
				return fmt.Errorf("package %q: timeline references unknown step %s", pkg.Title, entry.StepID)
			}
		}
	}
	return nil
}
