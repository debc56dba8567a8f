package ledger

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Text is raw user-entered text as it appears in the store. It decodes from
// JSON strings, numbers and null so data written by older front ends loads
// unchanged.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// Number returns the numeric value of t. See Number.
func (t Text) Number() float64 {
	return Number(string(t))
}

// Number converts text to a float64 the lenient way: surrounding whitespace
// is ignored, empty or unparseable text is 0, and so is anything that does
// not yield a finite value. Unsigned hex, octal and binary integer literals
// with a 0x/0o/0b prefix are accepted. Digit separators and hex floats are
// not numbers here.
func Number(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsRune(s, '_') {
		return 0
	}

	body := strings.TrimLeft(s, "+-")
	if len(body) >= 2 && body[0] == '0' {
		base := 0
		switch body[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if len(body) != len(s) {
				return 0
			}
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0
			}
			return float64(n)
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}
