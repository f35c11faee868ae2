// Package jsonutil provides loose JSON readers for mathtutor.
//
// The tutor service does not publish a schema: fields may be missing,
// null, strings or numbers depending on which engine produced them.
// These helpers read such payloads optimistically instead of failing
// the whole response on one odd field.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Text is a string field that accepts any JSON value.
// Strings decode verbatim, null decodes to "", and every other value
// keeps its compact JSON text (so 4 becomes "4" and [1,2] becomes "[1,2]").
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(CompactJSON(string(trimmed)))
	return nil
}

// String returns the field as a plain string.
func (t Text) String() string {
	return string(t)
}

// Empty reports whether the field is blank after trimming whitespace.
func (t Text) Empty() bool {
	return strings.TrimSpace(string(t)) == ""
}

// Int is an integer field that accepts numbers, numeric strings and
// whole floats such as 1.0. Anything else decodes to 0 without error.
type Int int

// UnmarshalJSON implements json.Unmarshaler.
func (n *Int) UnmarshalJSON(b []byte) error {
	*n = 0
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil
	}
	s := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	}
	if i, err := strconv.Atoi(s); err == nil {
		*n = Int(i)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
		*n = Int(f)
	}
	return nil
}

// Truthy reports whether a raw JSON value would count as true in a
// loosely typed client: true, a non-empty string, a non-zero number,
// or any object or array. Missing values, null, false, "" and 0 are falsy.
func Truthy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	switch trimmed[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return false
		}
		return s != ""
	default:
		f, err := strconv.ParseFloat(string(trimmed), 64)
		return err == nil && f != 0
	}
}

// StringValue returns the decoded string if raw is a JSON string, or "".
func StringValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return ""
	}
	return s
}

// PrettyJSON formats a JSON string with indentation for display.
// Returns the original string if it's not valid JSON.
func PrettyJSON(s string) string {
	var obj interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return s
	}
	pretty, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return s
	}
	return string(pretty)
}

// CompactJSON minifies a JSON string by removing whitespace.
func CompactJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

// TruncateString truncates a string to maxLen runes, adding "..."
// if truncation occurred. Used to keep trace payloads short.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
