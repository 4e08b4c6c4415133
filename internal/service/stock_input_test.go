package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockInputCoercion(t *testing.T) {
	cases := []struct {
		body string
		set  bool
		want int
	}{
		{`{}`, false, 0},
		{`{"stock": 12}`, true, 12},
		{`{"stock": "7"}`, true, 7},
		{`{"stock": " 8 "}`, true, 8},
		{`{"stock": 3.9}`, true, 3},
		{`{"stock": "abc"}`, true, 0},
		{`{"stock": null}`, true, 0},
		{`{"stock": true}`, true, 0},
		{`{"stock": -2}`, true, -2},
	}
	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			var in UpdateProductInput
			require.NoError(t, json.Unmarshal([]byte(tc.body), &in))
			assert.Equal(t, tc.set, in.Stock.Set)
			assert.Equal(t, tc.want, in.Stock.Value)
		})
	}
}

func TestCreateStockAcceptsNumericStrings(t *testing.T) {
	cases := map[string]StockValue{
		`{}`:              0,
		`{"stock": 4}`:    4,
		`{"stock": "10"}`: 10,
		`{"stock": "x"}`:  0,
		`{"stock": -1}`:   -1,
	}
	for body, want := range cases {
		t.Run(body, func(t *testing.T) {
			var in CreateProductInput
			require.NoError(t, json.Unmarshal([]byte(body), &in))
			assert.Equal(t, want, in.Stock)
		})
	}
}

func TestNormalizeUpdateRejectsNegativeStock(t *testing.T) {
	in := UpdateProductInput{Stock: StockOf(-2)}
	assert.True(t, IsValidation(normalizeUpdate(&in)))

	name := "  Widget  "
	in = UpdateProductInput{Name: &name}
	require.NoError(t, normalizeUpdate(&in))
	assert.Equal(t, "Widget", *in.Name)
}
