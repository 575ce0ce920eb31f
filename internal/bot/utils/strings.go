package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// GetTimestampedSubtext formats a message with a Discord timestamp and prefix.
// The timestamp shows relative time (e.g., "2 minutes ago") using Discord's timestamp format.
func GetTimestampedSubtext(message string) string {
	if message != "" {
		return fmt.Sprintf("-# `%s` <t:%d:R>", message, time.Now().Unix())
	}
	return ""
}

// SplitMessage joins a header and lines into messages of at most limit characters.
// Lines are never broken; a chunk is flushed before the line that would overflow it.
func SplitMessage(header string, lines []string, limit int) []string {
	if len(lines) == 0 {
		return []string{header}
	}

	var (
		chunks  []string
		current strings.Builder
	)

	current.WriteString(header)
	current.WriteByte('\n')

	for _, line := range lines {
		if utf8.RuneCountInString(current.String())+utf8.RuneCountInString(line)+1 > limit {
			if chunk := strings.TrimRight(current.String(), "\n "); chunk != "" {
				chunks = append(chunks, chunk)
			}
			current.Reset()
		}

		current.WriteString(line)
		current.WriteByte('\n')
	}

	if chunk := strings.TrimRight(current.String(), "\n "); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// FormatUptime renders a duration as "H:MM:SS", prefixed with the day count once it exceeds a day.
func FormatUptime(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	days := seconds / 86400
	clock := fmt.Sprintf("%d:%02d:%02d", (seconds%86400)/3600, (seconds%3600)/60, seconds%60)

	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}
