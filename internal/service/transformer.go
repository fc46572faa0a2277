package service

import (
	"errors"
	"regexp"
	"strings"
)

var ErrEmptyContent = errors.New("content is empty")

const (
	PlatformTwitter  = "twitter"
	PlatformLinkedIn = "linkedin"
	PlatformFacebook = "facebook"
)

var platformCeilings = map[string]int{
	PlatformTwitter:  280,
	PlatformLinkedIn: 3000,
	PlatformFacebook: 4096,
}

const defaultCeiling = 4096

var newlineRun = regexp.MustCompile(`\n{3,}`)

// TransformForPlatform derives a platform variant of the master content:
// newline runs collapsed, emoji stripped from heavily-decorated short-form
// text, and the result truncated to the platform ceiling. The transform is
// deterministic and idempotent on already-compliant output.
func TransformForPlatform(content, platform string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	out := content
	if platform == PlatformTwitter {
		out = newlineRun.ReplaceAllString(out, "\n")
		if countEmoji(out) > 2 {
			out = stripEmoji(out)
		}
	} else {
		out = newlineRun.ReplaceAllString(out, "\n\n")
	}
	out = strings.TrimSpace(out)

	return truncateToCeiling(out, CeilingFor(platform)), nil
}

// CeilingFor returns the character ceiling for a platform; unknown platforms
// get the long-form default.
func CeilingFor(platform string) int {
	if ceiling, ok := platformCeilings[platform]; ok {
		return ceiling
	}
	return defaultCeiling
}

// truncateToCeiling cuts at the last sentence terminator before the limit
// when one exists (no ellipsis), else at the last word boundary, else hard,
// appending an ellipsis for the latter two.
func truncateToCeiling(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	window := runes[:limit]
	for i := len(window) - 1; i >= 0; i-- {
		if isSentenceTerminator(window[i]) {
			return strings.TrimSpace(string(window[:i+1]))
		}
	}

	window = runes[:limit-1]
	if idx := lastSpaceIndex(window); idx > 0 {
		return strings.TrimRight(string(window[:idx]), " \n\t") + "…"
	}
	return string(window) + "…"
}

func isSentenceTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func lastSpaceIndex(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t' {
			return i
		}
	}
	return -1
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF, // symbols and pictographs
		r >= 0x1F600 && r <= 0x1F64F, // emoticons
		r >= 0x1F680 && r <= 0x1F6FF, // transport
		r >= 0x1F900 && r <= 0x1F9FF, // supplemental symbols
		r >= 0x1FA70 && r <= 0x1FAFF, // extended pictographs
		r >= 0x2600 && r <= 0x26FF, // miscellaneous symbols
		r >= 0x2700 && r <= 0x27BF: // dingbats
		return true
	}
	return false
}

func countEmoji(s string) int {
	count := 0
	for _, r := range s {
		if isEmoji(r) {
			count++
		}
	}
	return count
}

func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isEmoji(r) || r == 0xFE0F || r == 0x200D {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
