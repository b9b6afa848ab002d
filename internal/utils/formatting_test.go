package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abcdefg...", TruncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
	assert.Equal(t, "Zoë Ó...", TruncateString("Zoë Ó'Brien", 8))
}

func TestColumn(t *testing.T) {
	assert.Equal(t, "Anna      ", Column("Anna", 10))
	assert.Equal(t, "Alexand...", Column("Alexandria!", 10))
	assert.Len(t, []rune(Column("Zoë", 6)), 6)
}

func TestFormatConfirmationText(t *testing.T) {
	got := FormatConfirmationText("delete", []Detail{
		{Key: "Name", Value: "Anna Li"},
		{Key: "Phone", Value: "555"},
	})
	assert.Equal(t, "Confirm delete:\n\n  Name: Anna Li\n  Phone: 555\n\nProceed? (y/N)", got)
}

func TestFormatContactID(t *testing.T) {
	assert.Equal(t, "2023-11-14 22:13", FormatContactID(1700000000000))
}
