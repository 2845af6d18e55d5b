package notes

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const wrapWidth = 40

// Render formats notes for a plain-text chat message, one note per block:
// "{id}. {text wrapped at 40 columns} - {date}", ordered as given.
func Render(list []Note) string {
	blocks := make([]string, 0, len(list))
	for _, n := range list {
		blocks = append(blocks, fmt.Sprintf("%d. %s - %s", n.ID, wrap(n.Text, wrapWidth), n.CreatedDate))
	}
	return strings.Join(blocks, "\n")
}

// wrap breaks text into lines of at most width runes, splitting on spaces.
// Words longer than the width are hard-broken.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var (
		b    strings.Builder
		line string
	)
	flush := func() {
		if line == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		line = ""
	}

	for _, word := range words {
		for utf8.RuneCountInString(word) > width {
			flush()
			runes := []rune(word)
			line = string(runes[:width])
			flush()
			word = string(runes[width:])
		}
		switch {
		case line == "":
			line = word
		case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
			line += " " + word
		default:
			flush()
			line = word
		}
	}
	flush()
	return b.String()
}
