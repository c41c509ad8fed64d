// Package codec encodes nested document structures into the string
// columns of a batch row and back.
//
// Encode and Decode are the only place nested values cross the row
// boundary; the record flattener and expander both go through them.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Encode renders v as compact JSON without HTML escaping.
func Encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	// Encoder terminates every value with a newline.
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Compact normalizes raw to the exact text Encode produces for it, so a
// value decoded from a document compares equal to one read back from a row.
func Compact(raw json.RawMessage) (json.RawMessage, error) {
	if raw == nil {
		return nil, nil
	}
	s, err := Encode(raw)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(s), nil
}

// Decode parses s into v. Numbers inside interface values decode as
// json.Number so they re-encode to the same text.
func Decode(s string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after value", ErrDecode)
	}
	return nil
}
