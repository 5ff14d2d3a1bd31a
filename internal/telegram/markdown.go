package telegram

import (
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/gotd/td/tg"
)

// span is a markdown wrapper over a UTF-16 code unit range.
type span struct {
	start, end  int
	open, close string
}

// FormatEntities converts a message's plain text plus its formatting
// entities into markdown for terminal rendering. Telegram entity offsets
// count UTF-16 code units, so the text is processed in that encoding.
func FormatEntities(text string, entities []tg.MessageEntityClass) string {
	spans := make([]span, 0, len(entities))
	for _, e := range entities {
		if sp, ok := entitySpan(text, e); ok {
			spans = append(spans, sp)
		}
	}
	if len(spans) == 0 {
		return text
	}

	units := utf16.Encode([]rune(text))
	for i := range spans {
		if spans[i].end > len(units) {
			spans[i].end = len(units)
		}
	}

	// Outer spans first so nesting opens outside-in.
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	// Per position: opens in span order, closes in reverse (last opened
	// closes first).
	opens := make(map[int][]string)
	closes := make(map[int][]string)
	for _, sp := range spans {
		opens[sp.start] = append(opens[sp.start], sp.open)
		closes[sp.end] = append([]string{sp.close}, closes[sp.end]...)
	}

	var b strings.Builder
	for i := 0; i <= len(units); i++ {
		for _, s := range closes[i] {
			b.WriteString(s)
		}
		for _, s := range opens[i] {
			b.WriteString(s)
		}
		if i >= len(units) {
			break
		}
		if utf16.IsSurrogate(rune(units[i])) && i+1 < len(units) {
			b.WriteRune(utf16.DecodeRune(rune(units[i]), rune(units[i+1])))
			i++
		} else {
			b.WriteRune(rune(units[i]))
		}
	}
	return b.String()
}

func entitySpan(text string, entity tg.MessageEntityClass) (span, bool) {
	start := entity.GetOffset()
	end := start + entity.GetLength()

	switch e := entity.(type) {
	case *tg.MessageEntityBold:
		return span{start, end, "**", "**"}, true
	case *tg.MessageEntityItalic:
		return span{start, end, "*", "*"}, true
	case *tg.MessageEntityUnderline:
		// No underline in markdown; fall back to emphasis.
		return span{start, end, "*", "*"}, true
	case *tg.MessageEntityStrike:
		return span{start, end, "~~", "~~"}, true
	case *tg.MessageEntityCode:
		return span{start, end, "`", "`"}, true
	case *tg.MessageEntityPre:
		return span{start, end, "```" + e.Language + "\n", "\n```"}, true
	case *tg.MessageEntityTextURL:
		return span{start, end, "[", "](" + e.URL + ")"}, true
	case *tg.MessageEntityURL:
		url := utf16Slice(text, start, end)
		return span{start, end, "[", "](" + url + ")"}, true
	case *tg.MessageEntityMention:
		return span{start, end, "**", "**"}, true
	case *tg.MessageEntityHashtag:
		return span{start, end, "**", "**"}, true
	case *tg.MessageEntityBotCommand:
		return span{start, end, "`", "`"}, true
	case *tg.MessageEntityBlockquote:
		return span{start, end, "> ", ""}, true
	default:
		return span{}, false
	}
}

// utf16Slice extracts text[start:end] in UTF-16 code unit coordinates.
func utf16Slice(text string, start, end int) string {
	units := utf16.Encode([]rune(text))
	if start >= len(units) {
		return ""
	}
	if end > len(units) {
		end = len(units)
	}
	return string(utf16.Decode(units[start:end]))
}
