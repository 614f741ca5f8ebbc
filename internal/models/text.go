package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Text is a free-form submitted value kept as text. It decodes from a JSON
// string, number or boolean; numbers keep their literal digits.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*t = Text(data)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected text or number, got %s", data)
		}
		*t = Text(n)
		return nil
	}
}
