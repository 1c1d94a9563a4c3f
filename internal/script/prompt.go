package script

import (
	"fmt"
	"strings"

	"github.com/meltforce/voicecoach/internal/models"
)

var enthusiasmDescriptions = map[int]string{
	1: "very calm and gentle",
	2: "calm and encouraging",
	3: "motivating and energetic",
	4: "highly energetic and enthusiastic",
	5: "extremely intense and passionate",
}

var personaDescriptions = map[string]string{
	"chill":     "relaxed, friendly, and laid-back",
	"standard":  "professional, clear, and supportive",
	"locked-in": "intense, focused, and driven",
}

var goalDescriptions = map[string]string{
	"lose_fat":        "losing weight and burning fat",
	"build_muscle":    "building muscle and strength",
	"general_fitness": "improving overall fitness",
}

func enthusiasmDescription(cat int) string {
	if d, ok := enthusiasmDescriptions[cat]; ok {
		return d
	}
	return enthusiasmDescriptions[3]
}

func personaDescription(style string) string {
	if d, ok := personaDescriptions[style]; ok {
		return d
	}
	return personaDescriptions["standard"]
}

func profileContext(profile *models.Profile) (fitnessLevel, goalDesc string) {
	fitnessLevel = "intermediate"
	goal := "general_fitness"
	if profile != nil {
		if profile.FitnessLevel != nil {
			fitnessLevel = *profile.FitnessLevel
		}
		if profile.Goal != nil {
			goal = *profile.Goal
		}
	}
	goalDesc, ok := goalDescriptions[goal]
	if !ok {
		goalDesc = goalDescriptions["general_fitness"]
	}
	return fitnessLevel, goalDesc
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

func orNAInt(v *int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *v)
}

// personaBlock renders the shared trainer-personality section of every prompt.
func personaBlock(profile *models.Profile, trainer models.TrainerConfig) string {
	fitnessLevel, goalDesc := profileContext(profile)
	gender := trainer.Gender
	if gender == "" {
		gender = "neutral"
	}
	return fmt.Sprintf(`USER PROFILE:
- Fitness Level: %s
- Goal: %s

TRAINER PERSONALITY:
- Style: %s
- Enthusiasm: %s
- Age Category: %d/5
- Gender: %s`,
		fitnessLevel, goalDesc,
		personaDescription(trainer.PersonaStyle),
		enthusiasmDescription(trainer.EnthusiasmCategory),
		trainer.AgeCategory,
		gender,
	)
}

// buildPerItemPrompt asks for the strict three-field JSON the parser expects.
// The effective set count and rest time are spelled out so the model coaches
// through the configured sets rather than the catalog defaults.
func buildPerItemPrompt(item models.TimelineItem, profile *models.Profile, trainer models.TrainerConfig) string {
	sets := item.EffectiveSets()
	rest := "N/A"
	if len(item.Sets) > 0 && item.RestBetweenSetsSec != nil {
		rest = fmt.Sprintf("%d seconds", *item.RestBetweenSetsSec)
	}
	duration := item.DefaultDurationSec
	if item.DurationSec != nil {
		duration = item.DurationSec
	}
	reps := item.DefaultReps
	if item.Reps != nil {
		reps = item.Reps
	}

	var cueTask string
	if item.ExerciseType == models.ExerciseTypeDuration {
		cueTask = `- "cue_text": several short cue sentences spoken during the exercise, one per interval, separated by pauses. Write each cue as its own short sentence.`
	} else {
		cueTask = `- "cue_text": the empty string "" (this exercise takes no periodic cues).`
	}

	return fmt.Sprintf(`You are a personal fitness trainer providing voice instructions for a workout step to a single person.

WORKOUT STEP:
- Title: %s
- Description: %s
- Instructions: %s
- Exercise Type: %s
- Duration: %s seconds
- Reps: %s
- Sets: %d
- Rest Between Sets: %s

%s

TASK:
Generate a personalized voice instruction script for this workout step with three parts:
- "intro_text": introduce the exercise and how to perform it (aim for 10-30 seconds of speech).
- "start_text": a short go-signal to begin the exercise.
%s

The script should:
1. Match the %s personality style
2. Have %s energy level
3. Be appropriate for the user's fitness level
4. Use natural, conversational language suitable for voice delivery
5. Not use any markdown formatting, just plain text

Return ONLY a JSON object with exactly the keys "intro_text", "start_text" and "cue_text". No explanations or metadata.`,
		item.Title,
		orNA(item.Description),
		orNA(item.Instructions),
		item.ExerciseType,
		orNAInt(duration),
		orNAInt(reps),
		sets,
		rest,
		personaBlock(profile, trainer),
		cueTask,
		personaDescription(trainer.PersonaStyle),
		enthusiasmDescription(trainer.EnthusiasmCategory),
	)
}

func itemTitles(items []models.TimelineItem) string {
	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	return strings.Join(titles, ", ")
}

func buildBriefPrompt(in BriefInput) string {
	duration := "N/A"
	if in.EstimatedDurationSec != nil {
		duration = fmt.Sprintf("about %d minutes", *in.EstimatedDurationSec/60)
	}
	return fmt.Sprintf(`You are a personal fitness trainer about to guide a single person through a workout.

WORKOUT:
- Title: %s
- Description: %s
- Estimated Duration: %s
- Exercises in order: %s

%s

TASK:
Write a session briefing spoken right before the workout begins. Mentally prepare the user:
set the tone, preview what is coming, and get them ready to move. Aim for 6 to 10 sentences.
Plain conversational text only, no markdown, no lists. Return ONLY the briefing text.`,
		in.Title,
		orNA(in.Description),
		duration,
		itemTitles(in.Items),
		personaBlock(in.Profile, in.Trainer),
	)
}

func buildDebriefPrompt(in DebriefInput) string {
	return fmt.Sprintf(`You are a personal fitness trainer who just guided a single person through a workout.

WORKOUT:
- Title: %s
- Exercises completed in order: %s

%s

TASK:
Write a session debrief spoken right after the final exercise. Congratulate the user on
finishing, briefly recap the session, and give simple recovery guidance such as cooling
down, stretching and hydration. Aim for 8 to 12 sentences. Plain conversational text only,
no markdown, no lists. Return ONLY the debrief text.`,
		in.Title,
		itemTitles(in.Items),
		personaBlock(in.Profile, in.Trainer),
	)
}
