package service

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	ScoreLabel       = "Punteggio complessivo"
	FeedbackLabel    = "Feedback"
	FeedbackFallback = "Nessun feedback fornito."
)

// scoreToken only matches a whole 0-10 number, so out-of-scale values such as
// 12 are rejected rather than read as 1.
var scoreToken = regexp.MustCompile(`\b(?:10|[0-9])\b`)

// Evaluation is a parsed judgment of the generation service.
type Evaluation struct {
	Score    float64
	Feedback string
}

// ParseEvaluation extracts the overall score and the feedback from free text
// of the form
//
//	Punteggio complessivo: 7
//	Feedback: Buona risposta
//
// Labels are matched case-insensitively anywhere in a line, so markdown
// decorations and surrounding chatter are tolerated.
func ParseEvaluation(raw string) (*Evaluation, error) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	scoreIdx, scoreAt := findLabel(lines, ScoreLabel, -1)
	if scoreAt < 0 {
		return nil, &MalformedResponseError{Reason: "score label not found", Raw: raw}
	}
	token := scoreToken.FindString(strings.ToLower(lines[scoreIdx])[scoreAt+len(ScoreLabel):])
	if token == "" {
		return nil, &MalformedResponseError{Reason: "no numeric score after label", Raw: raw}
	}
	score, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil, &MalformedResponseError{Reason: "invalid score " + token, Raw: raw}
	}

	feedback := ""
	if feedbackIdx, at := findLabel(lines, FeedbackLabel, scoreIdx); at >= 0 {
		feedbackLine := lines[feedbackIdx]
		if colon := strings.Index(feedbackLine, ":"); colon >= 0 {
			feedback = strings.TrimSpace(strings.Trim(strings.TrimSpace(feedbackLine[colon+1:]), "*"))
		}
	}
	if feedback == "" {
		feedback = FeedbackFallback
	}

	return &Evaluation{Score: score, Feedback: feedback}, nil
}

// findLabel returns the index of the first line containing label, skipping
// line skip, and the byte offset of the label in the lowercased line. The
// offset is -1 when no line matches.
func findLabel(lines []string, label string, skip int) (int, int) {
	needle := strings.ToLower(label)
	for i, line := range lines {
		if i == skip {
			continue
		}
		if at := strings.Index(strings.ToLower(line), needle); at >= 0 {
			return i, at
		}
	}
	return -1, -1
}
