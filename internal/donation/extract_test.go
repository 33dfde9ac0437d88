// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

package donation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenKeepsDocumentOrder(t *testing.T) {
	flat, err := Flatten([]byte(`{"b":{"x":1,"y":[true,null,"s"]},"a":2.50,"empty":{}}`))
	require.NoError(t, err)

	assert.Equal(t, Flat{
		{Key: "b-x", Value: "1"},
		{Key: "b-y-0", Value: "true"},
		{Key: "b-y-1", Value: ""},
		{Key: "b-y-2", Value: "s"},
		{Key: "a", Value: "2.50"},
	}, flat)
}

func TestFlattenScalarAndErrors(t *testing.T) {
	flat, err := Flatten([]byte(`"just a string"`))
	require.NoError(t, err)
	assert.Equal(t, Flat{{Key: "", Value: "just a string"}}, flat)

	_, err = Flatten([]byte(`{"a":`))
	assert.Error(t, err)
	_, err = Flatten([]byte(`{} {}`))
	assert.Error(t, err)
}

func TestFindItemPrefersLeastNested(t *testing.T) {
	flat := Flat{
		{Key: "asd-asd-asd-asd", Value: "1"},
		{Key: "asd-asd", Value: "2"},
		{Key: "qwe", Value: "3"},
		{Key: "zasd-x", Value: "4"},
	}
	assert.Equal(t, "2", flat.FindItem("asd"))
	assert.Equal(t, "3", flat.FindItem("qwe"))
	assert.Equal(t, "", flat.FindItem("nope"))
	assert.Equal(t, []string{"1", "2", "4"}, flat.FindItems("asd"))
	assert.Nil(t, flat.FindItems("nope"))
}

func TestConvertUnixTimestamp(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "0", want: "1970-01-01 00:00:00"},
		{in: "1700000000.75", want: "2023-11-14 22:13:20"},
		{in: "", want: ""},
		{in: "yesterday", want: "yesterday"},
		{in: "NaN", want: "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertUnixTimestamp(tt.in))
		})
	}
}

func TestObjectEntries(t *testing.T) {
	entries, err := objectEntries([]byte(`{"z":1,"a":{"b":2}}`))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.JSONEq(t, `1`, string(entries[0]))
	assert.JSONEq(t, `{"b":2}`, string(entries[1]))

	_, err = objectEntries([]byte(`[1]`))
	assert.Error(t, err)
}
