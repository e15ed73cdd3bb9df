package messages

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/trigger"
)

func TestDefault_Reminder(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	today := time.Date(2026, time.October, 19, 10, 25, 0, 0, time.UTC)
	text, err := r.Reminder(trigger.DeliveryInfoFor(today, time.Tuesday))
	require.NoError(t, err)

	assert.Contains(t, text, "available again on *Tuesday*")
	assert.Contains(t, text, "*Delivery date:* 20 October 2026")
}

func TestDefault_Urgent(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	text, err := r.Urgent()
	require.NoError(t, err)
	assert.Contains(t, text, "1 HOUR LEFT")
}

func TestLoad_OverrideFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/bot/messages.yaml", []byte(
		"reminder: \"Open for {{.DayName}} ({{.DateStr}})\"\nurgent: \"Closing soon\"\n"), 0o644))

	r, err := Load(fs, "/etc/bot/messages.yaml")
	require.NoError(t, err)

	text, err := r.Reminder(trigger.DeliveryInfo{DayName: "Friday", DateStr: "23 October 2026"})
	require.NoError(t, err)
	assert.Equal(t, "Open for Friday (23 October 2026)", text)

	text, err = r.Urgent()
	require.NoError(t, err)
	assert.Equal(t, "Closing soon", text)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	r, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"not yaml":         "reminder: [",
		"missing reminder": "urgent: x",
		"missing urgent":   "reminder: x",
		"bad template":     "reminder: \"{{.DayName\"\nurgent: x",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}

	_, err := Load(afero.NewMemMapFs(), "/missing.yaml")
	assert.Error(t, err)
}

func TestReminder_UnknownFieldFails(t *testing.T) {
	r, err := Parse([]byte("reminder: \"{{.Nope}}\"\nurgent: x"))
	require.NoError(t, err)

	_, err = r.Reminder(trigger.DeliveryInfo{})
	assert.Error(t, err)
}
