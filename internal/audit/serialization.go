package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	escapedLineSeparatorConstant      = `\u2028`
	escapedParagraphSeparatorConstant = `\u2029`
	escapedSeparatorPrefixConstant    = `\u202`
	jsonEscapeCharacterConstant       = '\\'
	lineSeparatorRuneConstant         = '\u2028'
	paragraphSeparatorRuneConstant    = '\u2029'
)

// serialize renders a value as compact JSON text for the textual heuristics.
// Map keys are sorted; HTML characters and U+2028/U+2029 are left unescaped.
func serialize(value any) string {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return fmt.Sprint(value)
	}
	return unescapeLineSeparators(strings.TrimSuffix(buffer.String(), "\n"))
}

// unescapeLineSeparators restores the U+2028 and U+2029 escapes that encoding/json always emits.
// An escape only counts when it is preceded by an even run of backslashes.
func unescapeLineSeparators(text string) string {
	if !strings.Contains(text, escapedSeparatorPrefixConstant) {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text))
	backslashRun := 0
	for index := 0; index < len(text); index++ {
		character := text[index]
		if character == jsonEscapeCharacterConstant && backslashRun%2 == 0 {
			remainder := text[index:]
			switch {
			case strings.HasPrefix(remainder, escapedLineSeparatorConstant):
				builder.WriteRune(lineSeparatorRuneConstant)
				index += len(escapedLineSeparatorConstant) - 1
				continue
			case strings.HasPrefix(remainder, escapedParagraphSeparatorConstant):
				builder.WriteRune(paragraphSeparatorRuneConstant)
				index += len(escapedParagraphSeparatorConstant) - 1
				continue
			}
		}

		if character == jsonEscapeCharacterConstant {
			backslashRun++
		} else {
			backslashRun = 0
		}
		builder.WriteByte(character)
	}
	return builder.String()
}
