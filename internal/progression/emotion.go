package progression

import (
	"fmt"
	"time"
)

// EmotionState is the character mood derived from study recency.
type EmotionState string

const (
	EmotionExcited  EmotionState = "excited"
	EmotionHappy    EmotionState = "happy"
	EmotionNeutral  EmotionState = "neutral"
	EmotionSad      EmotionState = "sad"
	EmotionSleeping EmotionState = "sleeping"
)

// AllEmotions returns the emotion states from most to least engaged.
func AllEmotions() []EmotionState {
	return []EmotionState{EmotionExcited, EmotionHappy, EmotionNeutral, EmotionSad, EmotionSleeping}
}

// ClassifyEmotion maps the whole days elapsed since last to a mood.
// A nil last means the character has never studied. A last after now is
// treated as studied today.
func ClassifyEmotion(last *time.Time, now time.Time) EmotionState {
	if last == nil {
		return EmotionNeutral
	}
	elapsed := now.Sub(*last)
	if elapsed < 0 {
		return EmotionExcited
	}
	days := int(elapsed / (24 * time.Hour))
	switch {
	case days == 0:
		return EmotionExcited
	case days == 1:
		return EmotionHappy
	case days <= 3:
		return EmotionNeutral
	case days <= 7:
		return EmotionSad
	default:
		return EmotionSleeping
	}
}

// Emoji returns the face shown next to the character.
func (e EmotionState) Emoji() string {
	switch e {
	case EmotionExcited:
		return "🤩"
	case EmotionHappy:
		return "😊"
	case EmotionNeutral:
		return "😐"
	case EmotionSad:
		return "😢"
	case EmotionSleeping:
		return "😴"
	default:
		return "😐"
	}
}

// Message returns the speech line for a character learning techName.
func (e EmotionState) Message(techName string) string {
	switch e {
	case EmotionExcited:
		return fmt.Sprintf("%s study is the best! Keep running!", techName)
	case EmotionHappy:
		return fmt.Sprintf("Learning %s! You're doing great!", techName)
	case EmotionSad:
		return fmt.Sprintf("%s misses you...", techName)
	case EmotionSleeping:
		return fmt.Sprintf("%s fell asleep 💤", techName)
	default:
		return fmt.Sprintf("Waiting for some %s time", techName)
	}
}
