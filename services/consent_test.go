package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernwebbuilds/forkitt-api/models"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"whatsapp:+447911123456", "+447911123456"},
		{"whatsapp:+44 7911 123456", "+447911123456"},
		{"+44 (0)7911-123456", "+4407911123456"},
		{"  +447911123456  ", "+447911123456"},
		{"07911123456", "07911123456"},
		{"call me maybe", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.raw), "raw %q", tc.raw)
	}
}

func TestIsOptOutText(t *testing.T) {
	for _, text := range []string{"STOP", " stop ", "No", "n", "unsubscribe", "Opt Out", "optout", "Cancel Updates"} {
		assert.True(t, IsOptOutText(text), "text %q", text)
	}
	for _, text := range []string{"yes", "please stop sending", "nope", ""} {
		assert.False(t, IsOptOutText(text), "text %q", text)
	}
}

func TestWhatsappOptinLifecycle(t *testing.T) {
	db := newTestDB(t)

	assert.False(t, IsWhatsappOptedIn(db, "+447911123456"))

	require.NoError(t, SetWhatsappOptin(db, "whatsapp:+447911123456", true, "twilio_quick_reply"))
	assert.True(t, IsWhatsappOptedIn(db, "+447911123456"))
	// The transport-prefixed form resolves to the same record.
	assert.True(t, IsWhatsappOptedIn(db, "whatsapp:+44 7911 123456"))

	// Upsert flips the existing row rather than adding a second one.
	require.NoError(t, SetWhatsappOptin(db, "+447911123456", false, "twilio_quick_reply"))
	assert.False(t, IsWhatsappOptedIn(db, "+447911123456"))

	var count int64
	db.Model(&models.WhatsappOptin{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSetWhatsappOptinIgnoresEmptyPhone(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, SetWhatsappOptin(db, "not a number", true, "test"))

	var count int64
	db.Model(&models.WhatsappOptin{}).Count(&count)
	assert.Zero(t, count)
}
