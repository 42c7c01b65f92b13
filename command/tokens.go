package command

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Float converts a numeric token to float64. Tokens that crossed the wire
// arrive as float64 already; in-process batches may carry other numeric kinds.
func Float(tok any) (float64, bool) {
	switch v := tok.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// String converts a string token.
func String(tok any) (string, bool) {
	s, ok := tok.(string)
	return s, ok
}

// Vec3 reads up to three numbers from a payload token ([]any, []float64 or
// [3]float64). Missing components are zero. ok is false if the payload is not a
// numeric list.
func Vec3(tok any) (v [3]float64, ok bool) {
	switch p := tok.(type) {
	case [3]float64:
		return p, true
	case []float64:
		copy(v[:], p)
		return v, true
	case []any:
		for i := 0; i < len(p) && i < 3; i++ {
			f, ok := Float(p[i])
			if !ok {
				return v, false
			}
			v[i] = f
		}
		return v, true
	}
	return v, false
}

// Encode serializes a batch for transport across a thread boundary.
func Encode(batch []any) ([]byte, error) {
	data, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	return data, nil
}

// Decode parses a batch produced by Encode. Numbers decode as float64.
func Decode(data []byte) ([]any, error) {
	var batch []any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return batch, nil
}
