// Package generator orchestrates the audio package pipeline: resolve the
// package timeline, generate coaching scripts, synthesize speech, segment cue
// audio and assemble the ordered base64 queue the client plays back.
package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/audioseg"
	"github.com/meltforce/voicecoach/internal/models"
	"github.com/meltforce/voicecoach/internal/script"
	"github.com/meltforce/voicecoach/internal/speech"
	"github.com/meltforce/voicecoach/internal/timeline"
)

// Reserved queue positions for whole-session narration. Timeline items are
// 1-based, so both sentinels stay out of their range.
const (
	OrderSessionBrief   = 0
	OrderSessionDebrief = -1
)

// Speaking rate bounds accepted from user trainer config.
const (
	minSpeakingRate = 0.5
	maxSpeakingRate = 2.0
)

const defaultWorkers = 4

// ConfigurationError reports invalid user trainer configuration. It is raised
// before any script or speech provider is invoked.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid trainer configuration: %s: %s", e.Field, e.Message)
}

// Store is the persistence contract the pipeline reads workout data through.
type Store interface {
	GetPackage(ctx context.Context, id uuid.UUID) (*models.WorkoutPackage, error)
	GetStepsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.StepDefinition, error)
}

// UserConfigs resolves the per-user profile and merged trainer config.
type UserConfigs interface {
	GetAll(ctx context.Context, userID uuid.UUID) (*models.Profile, models.TrainerConfig, error)
}

// Options tunes the pipeline. Zero values fall back to defaults.
type Options struct {
	// Workers bounds how many timeline items are processed concurrently.
	Workers int
	// IncludeBriefing adds session brief and debrief items to the queue.
	IncludeBriefing bool
	// Segmenter controls cue audio splitting.
	Segmenter audioseg.Options
}

// Generator is the audio package pipeline.
type Generator struct {
	store   Store
	users   UserConfigs
	scripts script.Provider
	speech  speech.Synthesizer
	opts    Options
	logger  *slog.Logger
}

func New(store Store, users UserConfigs, scripts script.Provider, synth speech.Synthesizer, opts Options, logger *slog.Logger) *Generator {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Segmenter.MinSilence == 0 {
		opts.Segmenter = audioseg.DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{store: store, users: users, scripts: scripts, speech: synth, opts: opts, logger: logger}
}

// Generate builds the full audio queue for one workout package and user. Items
// come back ordered: optional session brief, the timeline items in package
// order, optional session debrief. The call blocks until every item is done or
// the first item fails; on failure the error names the lowest failing order.
func (g *Generator) Generate(ctx context.Context, packageID, userID uuid.UUID) ([]models.AudioQueueItem, error) {
	profile, trainer, err := g.users.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validateTrainer(trainer); err != nil {
		return nil, err
	}

	pkg, err := g.store.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}

	stepIDs := make([]uuid.UUID, 0, len(pkg.Timeline))
	for _, entry := range pkg.Timeline {
		stepIDs = append(stepIDs, entry.StepID)
	}
	steps, err := g.store.GetStepsByIDs(ctx, stepIDs)
	if err != nil {
		return nil, err
	}

	items, err := timeline.Resolve(pkg.Timeline, timeline.Catalog(steps))
	if err != nil {
		return nil, err
	}

	g.logger.Info("generating audio package",
		"package_id", packageID, "user_id", userID,
		"items", len(items), "workers", g.opts.Workers, "briefing", g.opts.IncludeBriefing)

	queue, err := g.runItems(ctx, items, profile, trainer)
	if err != nil {
		return nil, err
	}

	if g.opts.IncludeBriefing {
		brief, debrief, err := g.briefing(ctx, pkg, items, profile, trainer)
		if err != nil {
			return nil, err
		}
		queue = append([]models.AudioQueueItem{brief}, queue...)
		queue = append(queue, debrief)
	}
	return queue, nil
}

// validateTrainer rejects unusable trainer config before any provider call.
func validateTrainer(trainer models.TrainerConfig) error {
	if !speech.SupportedProviders[trainer.VoiceProvider] {
		return &ConfigurationError{
			Field:   "voice_provider",
			Message: fmt.Sprintf("unsupported provider %q", trainer.VoiceProvider),
		}
	}
	if trainer.SpeakingRate < minSpeakingRate || trainer.SpeakingRate > maxSpeakingRate {
		return &ConfigurationError{
			Field:   "speaking_rate",
			Message: fmt.Sprintf("%g outside [%g, %g]", trainer.SpeakingRate, minSpeakingRate, maxSpeakingRate),
		}
	}
	return nil
}

// runItems processes timeline items through a bounded worker pool. The first
// genuine failure cancels in-flight work; when several items fail before the
// cancellation lands, the one with the lowest order wins. Cancellation fallout
// in other items is never recorded as the failure.
func (g *Generator) runItems(ctx context.Context, items []models.TimelineItem, profile *models.Profile, trainer models.TrainerConfig) ([]models.AudioQueueItem, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]models.AudioQueueItem, len(items))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstOrd int
		firstErr error
	)
	sem := make(chan struct{}, g.opts.Workers)

	for i, item := range items {
		wg.Add(1)
		go func(order int, item models.TimelineItem) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			queueItem, err := g.generateItem(ctx, order, item, profile, trainer)
			if err != nil {
				mu.Lock()
				artifact := ctx.Err() != nil && errors.Is(err, ctx.Err())
				if !artifact && (firstErr == nil || order < firstOrd) {
					firstOrd, firstErr = order, err
				}
				mu.Unlock()
				cancel()
				return
			}
			results[order-1] = queueItem
		}(i+1, item)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("timeline item %d: %w", firstOrd, firstErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// generateItem builds one queue item: script first, then the item's audio
// clips in parallel. Cue audio exists only for duration exercises; the single
// synthesized cue clip is split on silence into individually playable blobs.
func (g *Generator) generateItem(ctx context.Context, order int, item models.TimelineItem, profile *models.Profile, trainer models.TrainerConfig) (models.AudioQueueItem, error) {
	text, err := g.scripts.GeneratePerItemScript(ctx, item, profile, trainer)
	if err != nil {
		return models.AudioQueueItem{}, err
	}

	var (
		wg                         sync.WaitGroup
		intro, start, cues         []byte
		introErr, startErr, cueErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		intro, introErr = g.synthesize(ctx, text.IntroText, trainer)
	}()
	go func() {
		defer wg.Done()
		start, startErr = g.synthesize(ctx, text.StartText, trainer)
	}()
	withCue := item.ExerciseType == models.ExerciseTypeDuration && text.CueText != ""
	if withCue {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cues, cueErr = g.synthesize(ctx, text.CueText, trainer)
		}()
	}
	wg.Wait()

	for _, err := range []error{introErr, startErr, cueErr} {
		if err != nil {
			return models.AudioQueueItem{}, err
		}
	}

	out := models.AudioQueueItem{
		Order:          order,
		IntroAudioBlob: encodeBlob(intro),
		StartAudioBlob: encodeBlob(start),
		CueAudioBlobs:  []string{},
	}
	if withCue {
		segments := audioseg.Split(cues, g.opts.Segmenter)
		for _, seg := range segments {
			out.CueAudioBlobs = append(out.CueAudioBlobs, encodeBlob(seg))
		}
		g.logger.Debug("segmented cue audio", "order", order, "segments", len(segments))
	}
	return out, nil
}

// briefing generates the session brief and debrief items. Both carry narration
// in the intro blob only.
func (g *Generator) briefing(ctx context.Context, pkg *models.WorkoutPackage, items []models.TimelineItem, profile *models.Profile, trainer models.TrainerConfig) (models.AudioQueueItem, models.AudioQueueItem, error) {
	var zero models.AudioQueueItem

	briefText, err := g.scripts.GenerateSessionBrief(ctx, script.BriefInput{
		Title:                pkg.Title,
		Description:          pkg.Description,
		EstimatedDurationSec: pkg.EstimatedDurationSec,
		Items:                items,
		Profile:              profile,
		Trainer:              trainer,
	})
	if err != nil {
		return zero, zero, fmt.Errorf("session brief: %w", err)
	}
	debriefText, err := g.scripts.GenerateSessionDebrief(ctx, script.DebriefInput{
		Title:   pkg.Title,
		Items:   items,
		Profile: profile,
		Trainer: trainer,
	})
	if err != nil {
		return zero, zero, fmt.Errorf("session debrief: %w", err)
	}

	briefAudio, err := g.synthesize(ctx, briefText, trainer)
	if err != nil {
		return zero, zero, fmt.Errorf("session brief: %w", err)
	}
	debriefAudio, err := g.synthesize(ctx, debriefText, trainer)
	if err != nil {
		return zero, zero, fmt.Errorf("session debrief: %w", err)
	}

	brief := models.AudioQueueItem{
		Order:          OrderSessionBrief,
		IntroAudioBlob: encodeBlob(briefAudio),
		CueAudioBlobs:  []string{},
	}
	debrief := models.AudioQueueItem{
		Order:          OrderSessionDebrief,
		IntroAudioBlob: encodeBlob(debriefAudio),
		CueAudioBlobs:  []string{},
	}
	return brief, debrief, nil
}

func (g *Generator) synthesize(ctx context.Context, text string, trainer models.TrainerConfig) ([]byte, error) {
	return g.speech.Synthesize(ctx, speech.Request{
		Text:    text,
		VoiceID: trainer.VoiceID,
	})
}

func encodeBlob(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
