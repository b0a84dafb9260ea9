package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	for _, raw := range []string{
		"0781234567",
		"781234567",
		"250781234567",
		"+250781234567",
		"+250 781 234 567",
		"078-123-4567",
	} {
		got, err := NormalizePhone(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "+250781234567", got, raw)
	}
}

func TestNormalizePhone_Invalid(t *testing.T) {
	for _, raw := range []string{
		"0681234567",   // not an MTN 7x prefix
		"07812345",     // too short
		"07812345678",  // too long
		"+14155550100", // not Rwandan
		"notaphone",
	} {
		_, err := NormalizePhone(raw)
		assert.ErrorIs(t, err, ErrInvalidPhone, raw)
	}
}

func TestNormalizePhone_EmptyPassesThrough(t *testing.T) {
	got, err := NormalizePhone("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
