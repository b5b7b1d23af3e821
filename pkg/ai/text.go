package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Text is a string that also accepts JSON numbers, booleans and null, since models are not consistent
// about quoting answers such as "4" or true.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*t = Text(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("unsupported text value %s", string(trimmed))
		}
		*t = Text(n.String())
	}

	return nil
}

// String returns the underlying string.
func (t Text) String() string {
	return string(t)
}
