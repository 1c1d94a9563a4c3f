// Package audioseg splits a synthesized cue clip into independently-playable
// segments at natural speech pauses. Segmentation is a heuristic and its
// failure is recoverable: callers always get a usable result, never an error.
package audioseg

import (
	"math"
	"time"
)

// Options tunes the silence detector.
type Options struct {
	// MinSilence is the shortest near-silent run treated as a split point.
	MinSilence time.Duration
	// SilenceThresholdDB is the amplitude ceiling for silence, in dBFS.
	SilenceThresholdDB float64
	// KeepSilence is how much boundary silence each segment retains so
	// playback does not feel clipped.
	KeepSilence time.Duration
}

// DefaultOptions match the tuning the cue scripts are written for: cues are
// separated by about a second of pause.
func DefaultOptions() Options {
	return Options{
		MinSilence:         time.Second,
		SilenceThresholdDB: -40,
		KeepSilence:        500 * time.Millisecond,
	}
}

// frameMs is the analysis window. Per-window peak amplitude smooths over
// single-sample zero crossings inside speech.
const frameMs = 10

// Split divides one WAV clip into ordered, non-overlapping segments, one per
// detected cue, each re-encoded as a standalone WAV blob.
//
// Fallbacks keep downstream assembly total: when no silence run qualifies the
// original clip comes back as a single segment, and empty or undecodable
// input yields an empty list.
func Split(data []byte, opts Options) [][]byte {
	if len(data) == 0 {
		return nil
	}
	c, err := decode(data)
	if err != nil {
		return nil
	}

	ranges := speechRanges(c, opts)
	if len(ranges) < 2 {
		return [][]byte{data}
	}

	keep := framesFor(opts.KeepSilence, c.sampleRate)
	totalFrames := len(c.samples) / c.channels

	segments := make([][]byte, 0, len(ranges))
	for _, r := range ranges {
		start := max(0, r.start-keep)
		end := min(totalFrames, r.end+keep)
		blob, err := EncodePCM16(c.samples[start*c.channels:end*c.channels], c.sampleRate, c.channels)
		if err != nil {
			return [][]byte{data}
		}
		segments = append(segments, blob)
	}
	return segments
}

type frameRange struct {
	start, end int // frame indices, end exclusive
}

// speechRanges finds the non-silent stretches separated by qualifying silence
// runs. Silence shorter than MinSilence stays inside its surrounding speech.
func speechRanges(c *clip, opts Options) []frameRange {
	frameLen := c.sampleRate * frameMs / 1000
	if frameLen == 0 {
		frameLen = 1
	}
	totalFrames := len(c.samples) / c.channels
	threshold := amplitudeThreshold(c.bitDepth, opts.SilenceThresholdDB)
	minSilentFrames := framesFor(opts.MinSilence, c.sampleRate)

	var ranges []frameRange
	speechStart := -1
	silentRun := 0

	flush := func(end int) {
		if speechStart >= 0 && end > speechStart {
			ranges = append(ranges, frameRange{start: speechStart, end: end})
		}
		speechStart = -1
	}

	for pos := 0; pos < totalFrames; pos += frameLen {
		winEnd := min(pos+frameLen, totalFrames)
		if windowPeak(c, pos, winEnd) < threshold {
			silentRun += winEnd - pos
			if speechStart >= 0 && silentRun >= minSilentFrames {
				// the window that tipped the run over closes the
				// current speech range at the run's start
				flush(winEnd - silentRun)
			}
			continue
		}
		if speechStart < 0 {
			speechStart = pos
		}
		silentRun = 0
	}
	flush(totalFrames)
	return ranges
}

// windowPeak returns the peak absolute amplitude across all channels of the
// frame window [start, end).
func windowPeak(c *clip, start, end int) float64 {
	peak := 0
	for i := start * c.channels; i < end*c.channels; i++ {
		v := c.samples[i]
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return float64(peak)
}

// amplitudeThreshold converts a dBFS level to an absolute sample amplitude
// for the clip's bit depth.
func amplitudeThreshold(bitDepth int, db float64) float64 {
	fullScale := float64(int(1)<<(bitDepth-1)) - 1
	return fullScale * math.Pow(10, db/20)
}

func framesFor(d time.Duration, sampleRate int) int {
	return int(d.Seconds() * float64(sampleRate))
}
