package search

import (
	"regexp"
	"strings"
)

var voicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:search for|find|look for|show me) (.+)`),
	regexp.MustCompile(`(?i)(.+) (?:products|items)`),
	regexp.MustCompile(`(?i)i want (.+)`),
	regexp.MustCompile(`(?i)(.+)`),
}

var (
	fillerWords = regexp.MustCompile(`(?i)\b(please|for me|some|any)\b`)
	spaces      = regexp.MustCompile(`\s+`)
)

// ParseVoiceCommand extracts the search terms from a speech transcript,
// e.g. "search for some mascara please" yields "mascara".
func ParseVoiceCommand(transcript string) string {
	cmd := strings.ToLower(strings.TrimSpace(transcript))

	var q string
	for _, re := range voicePatterns {
		if m := re.FindStringSubmatch(cmd); m != nil && m[1] != "" {
			q = strings.TrimSpace(m[1])
			break
		}
	}

	q = fillerWords.ReplaceAllString(q, "")
	q = spaces.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}
