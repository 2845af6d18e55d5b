package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render(nil))
}

func TestRenderShortNotes(t *testing.T) {
	out := Render([]Note{
		{ID: 1, Text: "Buy milk", CreatedDate: "01/01/2026"},
		{ID: 3, Text: "Call mom", CreatedDate: "02/01/2026"},
	})
	assert.Equal(t, "1. Buy milk - 01/01/2026\n3. Call mom - 02/01/2026", out)
}

func TestRenderWrapsLongText(t *testing.T) {
	text := "this is a somewhat longer note that definitely does not fit on a single forty column line"
	out := Render([]Note{{ID: 2, Text: text, CreatedDate: "05/06/2026"}})

	lines := strings.Split(out, "\n")
	assert.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], "2. "))
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], " - 05/06/2026"))
	for _, line := range lines[1 : len(lines)-1] {
		assert.LessOrEqual(t, len(line), 40)
	}
	// No word is lost in wrapping.
	joined := strings.Join(lines, " ")
	for _, word := range strings.Fields(text) {
		assert.Contains(t, joined, word)
	}
}

func TestWrapHardBreaksLongWords(t *testing.T) {
	word := strings.Repeat("a", 95)
	out := wrap(word, 40)
	lines := strings.Split(out, "\n")
	assert.Equal(t, []string{strings.Repeat("a", 40), strings.Repeat("a", 40), strings.Repeat("a", 15)}, lines)
}

func TestValidateTextTrims(t *testing.T) {
	got, err := ValidateText("  hello  ")
	assert.NoError(t, err)
	assert.Equal(t, "hello", got)
}
