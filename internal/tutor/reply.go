package tutor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Correction is the mistake triple a model reply can carry. The
// explanation is shown to the learner but never persisted.
type Correction struct {
	Mistake     string `json:"mistake"`
	Correction  string `json:"correction"`
	Explanation string `json:"explanation,omitempty"`
}

// ParseError reports a correction segment that could not be decoded.
// Callers treat the turn as if no mistake was detected.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unreadable correction segment: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	thinkRe      = regexp.MustCompile(`(?s)<think>.*?</think>`)
	correctionRe = regexp.MustCompile(`(?s)<correction>(.*?)</correction>`)
)

// ParseReply splits a raw model reply into the text shown to the
// learner and the optional correction triple. Reasoning blocks some
// models emit are stripped first, and correction segments are removed
// from the display text whether or not they decode. A segment that does
// not decode, or that lacks a mistake or correction field, yields a
// ParseError alongside the cleaned text.
func ParseReply(raw string) (string, *Correction, error) {
	cleaned := thinkRe.ReplaceAllString(raw, "")
	match := correctionRe.FindStringSubmatch(cleaned)
	display := strings.TrimSpace(correctionRe.ReplaceAllString(cleaned, ""))
	if match == nil {
		return display, nil, nil
	}

	var c Correction
	if err := json.Unmarshal([]byte(match[1]), &c); err != nil {
		return display, nil, &ParseError{Raw: match[1], Err: err}
	}
	if strings.TrimSpace(c.Mistake) == "" || strings.TrimSpace(c.Correction) == "" {
		return display, nil, &ParseError{Raw: match[1], Err: errors.New("missing mistake or correction field")}
	}
	return display, &c, nil
}
