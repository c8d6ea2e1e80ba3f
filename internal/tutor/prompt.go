package tutor

import (
	"fmt"
	"strings"
)

// CorrectionOpen and CorrectionClose delimit the machine-readable
// correction segment the model appends after its conversational reply.
const (
	CorrectionOpen  = "<correction>"
	CorrectionClose = "</correction>"
)

const correctionFormat = `{"mistake":"...","correction":"...","explanation":"..."}`

// SystemPrompt builds the tutoring instruction for one session. The
// model roleplays the scene in the target language and reports detected
// mistakes only through the delimited correction segment.
func SystemPrompt(target, native string, level Level, scene string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a friendly %s tutor roleplaying a scene with a learner.\n\n", target)
	fmt.Fprintf(&b, "Scene: %s\n\n", scene)
	fmt.Fprintf(&b, "Converse only in %s, with short replies suited to a %s learner. ", target, strings.ToLower(string(level)))
	b.WriteString("Stay in the scene and keep the conversation moving, asking a question when it feels natural. ")
	b.WriteString("Never switch to a different writing system than the one the learner uses.\n\n")

	b.WriteString("Silently check every learner message for grammar or vocabulary mistakes. ")
	b.WriteString("When the latest learner message contains a mistake, append one line after your reply, formatted exactly as:\n")
	fmt.Fprintf(&b, "%s%s%s\n", CorrectionOpen, correctionFormat, CorrectionClose)
	fmt.Fprintf(&b, "with the mistaken fragment, the corrected fragment, and a one-sentence explanation in %s. ", native)
	b.WriteString("When the message has no mistake, omit the segment entirely. ")
	b.WriteString("Never mention corrections inside your conversational reply.")

	return b.String()
}

// OpeningInstruction asks the model for the first line of the scene. It
// is sent as a hidden user turn and never shown in the transcript.
func OpeningInstruction(target string) string {
	return fmt.Sprintf("Greet me in %s and open the scene with your first line.", target)
}

// Focus returns the review focus line for a count of recorded mistakes.
func Focus(mistakeCount int) string {
	if mistakeCount > 2 {
		return "Verb conjugation and vocabulary improvement."
	}
	return "Keep practicing!"
}
