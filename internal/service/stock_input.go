package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StockInput is the stock field of a partial update. Set reports whether the
// field was present in the request at all.
type StockInput struct {
	Set   bool
	Value int
}

// StockOf is a present stock value.
func StockOf(v int) StockInput {
	return StockInput{Set: true, Value: v}
}

// UnmarshalJSON accepts a number or a numeric string. Anything else,
// null included, reads as 0.
func (s *StockInput) UnmarshalJSON(data []byte) error {
	s.Set = true
	s.Value = 0

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		s.Value = parseStock(str)
		return nil
	}
	s.Value = parseStock(string(data))
	return nil
}

// StockValue is a required stock level on create. It decodes like StockInput.
type StockValue int

func (v *StockValue) UnmarshalJSON(data []byte) error {
	var in StockInput
	if err := in.UnmarshalJSON(data); err != nil {
		return err
	}
	*v = StockValue(in.Value)
	return nil
}

func (s StockInput) MarshalJSON() ([]byte, error) {
	if !s.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(s.Value)), nil
}

// parseStock truncates fractional input and falls back to 0.
func parseStock(raw string) int {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}
