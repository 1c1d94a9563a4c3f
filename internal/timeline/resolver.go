// Package timeline resolves a package's stored timeline against the step
// catalog into the ordered items the audio pipeline works from.
package timeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/models"
)

// ResolutionError reports every step id referenced by a timeline that is
// missing from the catalog, not just the first.
type ResolutionError struct {
	MissingIDs []uuid.UUID
}

func (e *ResolutionError) Error() string {
	ids := make([]string, len(e.MissingIDs))
	for i, id := range e.MissingIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("timeline references missing workout steps: %s", strings.Join(ids, ", "))
}

// Resolve merges each timeline entry with its step definition, preserving
// input order exactly, including repeated step ids. A bare step reference and
// an override object with no effective overrides both yield the pure-default
// item. Resolution is atomic: if any referenced id is absent from the catalog,
// no items are returned and the error enumerates all missing ids.
func Resolve(entries []models.TimelineEntry, catalog map[uuid.UUID]models.StepDefinition) ([]models.TimelineItem, error) {
	var missing []uuid.UUID
	seenMissing := make(map[uuid.UUID]bool)
	items := make([]models.TimelineItem, 0, len(entries))

	for _, entry := range entries {
		step, ok := catalog[entry.StepID]
		if !ok {
			if !seenMissing[entry.StepID] {
				seenMissing[entry.StepID] = true
				missing = append(missing, entry.StepID)
			}
			continue
		}
		items = append(items, merge(step, entry))
	}

	if len(missing) > 0 {
		return nil, &ResolutionError{MissingIDs: missing}
	}
	return items, nil
}

// merge copies the step definition verbatim, then applies override fields
// key-by-key. Absent override fields leave the defaults untouched.
func merge(step models.StepDefinition, entry models.TimelineEntry) models.TimelineItem {
	item := models.TimelineItem{StepDefinition: step}

	if entry.Sets != nil {
		item.Sets = entry.Sets
	}
	if entry.RestBetweenSetsSec != nil {
		item.RestBetweenSetsSec = entry.RestBetweenSetsSec
	}
	if entry.Reps != nil {
		item.Reps = entry.Reps
	}
	if entry.WeightKg != nil {
		item.WeightKg = entry.WeightKg
	}
	if entry.DistanceM != nil {
		item.DistanceM = entry.DistanceM
	}
	if entry.DurationSec != nil {
		item.DurationSec = entry.DurationSec
	}
	return item
}

// Catalog builds the id-keyed lookup Resolve consumes from a step list.
func Catalog(steps []models.StepDefinition) map[uuid.UUID]models.StepDefinition {
	m := make(map[uuid.UUID]models.StepDefinition, len(steps))
	for _, s := range steps {
		m[s.ID] = s
	}
	return m
}
