package markdown

import (
	"strings"
	"unicode/utf8"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `\_*[]()~` + "`" + `>#+-=|{}.!`

const ellipsis = "…"

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var mdV2Lookup = func() [256]bool {
	var m [256]bool
	for i := range len(mdV2SpecialChars) {
		m[mdV2SpecialChars[i]] = true
	}
	return m
}()

// EscapeV2 makes arbitrary text safe to send with ParseMode MarkdownV2.
func EscapeV2(input string) string {
	var b strings.Builder

	for i := range len(input) {
		c := input[i]
		if mdV2Lookup[c] {
			if b.Len() == 0 && i > 0 {
				b.WriteString(input[:i])
			}
			b.WriteByte('\\')
			b.WriteByte(c)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(c)
		}
	}

	if b.Len() == 0 {
		return input
	}

	return b.String()
}

// Truncate cuts text to at most limit runes, ending with an ellipsis when
// something was dropped.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := strings.TrimRight(string(runes[:max(limit-1, 0)]), " \n\t")

	return cut + ellipsis
}

// Split breaks text into chunks of at most limit runes, preferring paragraph
// and then line or word boundaries.
func Split(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" || limit <= 0 {
		return nil
	}

	var chunks []string

	for text != "" {
		if utf8.RuneCountInString(text) <= limit {
			chunks = append(chunks, text)
			break
		}

		// Slice the original bytes; re-encoding runes would turn invalid
		// bytes into three-byte replacement characters.
		head := text[:runeOffset(text, limit)]
		cut := len(head)

		for _, sep := range []string{"\n\n", "\n", " "} {
			if i := strings.LastIndex(head, sep); i > 0 {
				cut = i
				break
			}
		}

		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}

	return chunks
}

// runeOffset returns the byte offset of the n-th rune in s. Each invalid byte
// counts as one rune, matching utf8.RuneCountInString.
func runeOffset(s string, n int) int {
	off := 0
	for ; n > 0 && off < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}
