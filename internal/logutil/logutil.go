// Package logutil keeps credentials and whole page dumps out of logs.
//
// The harness logs every value it types and the text it last saw while
// waiting. Both pass through here first: typed passwords are masked, and
// page text is folded onto one short line.
package logutil

import (
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	redacted  = "[REDACTED]"
	truncated = "..."
)

// sensitiveMarkers are matched against a lower-cased key with separators
// removed, so "user-password", "Set-Cookie" and "api_token" all hit.
var sensitiveMarkers = []string{"password", "cookie", "authorization", "token", "secret"}

// Sensitive reports whether a field, header or selector named key holds a
// credential.
func Sensitive(key string) bool {
	k := strings.ToLower(key)
	k = strings.NewReplacer("-", "", "_", "", " ", "").Replace(k)
	for _, m := range sensitiveMarkers {
		if strings.Contains(k, m) {
			return true
		}
	}
	return false
}

// Redact masks value when key is Sensitive. An empty value is returned as
// is, so a login attempt with no password still reads as one.
func Redact(key, value string) string {
	if value != "" && Sensitive(key) {
		return redacted
	}
	return value
}

// Headers renders request headers as sorted name="value" pairs with
// credentials masked.
func Headers(h http.Header) string {
	if len(h) == 0 {
		return "{}"
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(strings.ToLower(name))
		b.WriteByte('=')
		values := h.Values(name)
		if len(values) == 0 {
			b.WriteString("<empty>")
			continue
		}
		masked := make([]string, len(values))
		for j, v := range values {
			masked[j] = Redact(name, v)
		}
		b.WriteByte('"')
		b.WriteString(strings.Join(masked, ", "))
		b.WriteByte('"')
	}
	return b.String()
}

// Preview folds page text onto one line and keeps at most maxRunes runes of
// it. maxRunes <= 0 keeps everything.
func Preview(text string, maxRunes int) string {
	line := strings.Join(strings.Fields(text), " ")
	if maxRunes <= 0 || utf8.RuneCountInString(line) <= maxRunes {
		return line
	}
	cut := 0
	for i := range line {
		if maxRunes == 0 {
			cut = i
			break
		}
		maxRunes--
	}
	return line[:cut] + truncated
}
