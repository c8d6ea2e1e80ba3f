package tutor

import (
	"fmt"
	"strings"
)

// Level is the learner's proficiency level. It influences prompt
// phrasing and which preset scenes are offered.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Levels returns all levels in teaching order.
func Levels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// ParseLevel normalizes free-form input into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return LevelBeginner, nil
	case "intermediate":
		return LevelIntermediate, nil
	case "advanced":
		return LevelAdvanced, nil
	}
	return "", fmt.Errorf("unknown proficiency level: %q", s)
}

var scenes = map[Level][]string{
	LevelBeginner: {
		"You’re at a market buying fruit.",
		"You’re greeting a neighbor in your new town.",
		"You’re asking for directions to a park.",
	},
	LevelIntermediate: {
		"You’re ordering a meal at a restaurant.",
		"You’re shopping for clothes in a store.",
		"You’re booking a hotel room over the phone.",
	},
	LevelAdvanced: {
		"You’re negotiating a business deal.",
		"You’re discussing a news article with a friend.",
		"You’re giving a presentation at work.",
	},
}

// Scenes returns the preset roleplay scenes for a level. Unknown levels
// fall back to the beginner set. Free-text scenes are accepted
// elsewhere; these are only suggestions.
func Scenes(level Level) []string {
	s, ok := scenes[level]
	if !ok {
		s = scenes[LevelBeginner]
	}
	return append([]string(nil), s...)
}
