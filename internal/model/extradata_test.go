package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtraDataRoundTrip(t *testing.T) {
	original := ExtraData{
		"jurisdiction": "NY",
		"print_no":     "S1234",
		"sponsors":     []any{"A", "B"},
	}

	value, err := original.Value()
	require.NoError(t, err)

	var scanned ExtraData
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, original, scanned)
}

func TestExtraDataNil(t *testing.T) {
	var e ExtraData

	value, err := e.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), value)

	require.NoError(t, e.Scan(nil))
	assert.Nil(t, e)
}

func TestExtraDataScanRejectsUnknownType(t *testing.T) {
	var e ExtraData
	assert.Error(t, e.Scan(42))
}
