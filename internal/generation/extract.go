package generation

import (
	"encoding/json"
	"strings"
)

const fence = "```"

// Extract pulls a JSON candidate out of free-form model output. It tries, in
// order: the whole trimmed text, the body of the first markdown fence, and a
// bracket scan over each opener of the expected root kind until one closes
// on valid JSON. When none does, it falls back to the span from the first
// opener to the last closer. The candidate is not guaranteed to parse;
// Validate reports that.
func Extract(text string, root rootKind) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	if body, ok := fenced(trimmed); ok && json.Valid([]byte(body)) {
		return body, nil
	}

	opener, closer := byte('{'), byte('}')
	if root == rootArray {
		opener, closer = '[', ']'
	}
	first := strings.IndexByte(text, opener)
	if first < 0 {
		return "", &ExtractionError{Raw: text}
	}

	// An unclosed opener swallows the rest of the text, so later openers
	// are nested in it.
	firstEnd := -1
	for start := first; start >= 0; {
		end := balancedEnd(text, start)
		if end < 0 {
			break
		}
		if start == first {
			firstEnd = end
		}
		if json.Valid([]byte(text[start:end])) {
			return text[start:end], nil
		}
		next := strings.IndexByte(text[start+1:], opener)
		if next < 0 {
			break
		}
		start += next + 1
	}

	if firstEnd > 0 {
		return text[first:firstEnd], nil
	}
	if end := strings.LastIndexByte(text, closer); end > first {
		return text[first : end+1], nil
	}
	return text[first:], nil
}

// fenced returns the body of the first ``` block, with an optional language
// tag stripped from the opening line.
func fenced(text string) (string, bool) {
	i := strings.Index(text, fence)
	if i < 0 {
		return "", false
	}
	rest := text[i+len(fence):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		tag := strings.TrimSpace(rest[:nl])
		if tag == "" || isLangTag(tag) {
			rest = rest[nl+1:]
		}
	} else if len(rest) >= 4 && strings.EqualFold(rest[:4], "json") {
		rest = rest[4:]
	}
	j := strings.Index(rest, fence)
	if j < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:j]), true
}

func isLangTag(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// balancedEnd returns the index just past the bracket that closes the one at
// start, ignoring brackets inside JSON strings. It returns -1 when the text
// ends first.
func balancedEnd(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
