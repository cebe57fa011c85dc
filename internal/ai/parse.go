package ai

import (
	"errors"
	"regexp"
	"strings"
)

const maxAnswerRunes = 1200

var (
	markdownNoise = regexp.MustCompile("(?m)^\\s*(#+|[*-]\\s|>)\\s*")
	emphasis      = regexp.MustCompile(`\*{1,2}([^*]+)\*{1,2}`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
	ErrEmptyReply = errors.New("empty_reply")
)

// CleanAnswer strips markdown decoration the model adds despite the prompt
// and caps the length.
func CleanAnswer(text string) (string, error) {
	out := emphasis.ReplaceAllString(text, "$1")
	out = markdownNoise.ReplaceAllString(out, "")
	out = blankLines.ReplaceAllString(out, "\n\n")
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyReply
	}
	if r := []rune(out); len(r) > maxAnswerRunes {
		out = strings.TrimSpace(string(r[:maxAnswerRunes])) + "..."
	}
	return out, nil
}
