package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valleywatch/news-threat-etl/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	alert := domain.Alert{
		Lat:         34.0161,
		Lng:         75.3150,
		Severity:    domain.SeverityHigh,
		Description: "Explosion near market - Authorities responding",
		City:        "Pahalgam",
	}

	msg, err := serializeToMessage(alert)
	require.NoError(t, err)

	assert.Equal(t, []byte("Pahalgam"), msg.Key)

	var decoded domain.Alert
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, alert, decoded)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "content-type", msg.Headers[0].Key)
	assert.Equal(t, []byte("application/json"), msg.Headers[0].Value)
	assert.Equal(t, "severity", msg.Headers[1].Key)
	assert.Equal(t, []byte("high"), msg.Headers[1].Value)
}

func TestSerializeToMessage_Fields(t *testing.T) {
	msg, err := serializeToMessage(domain.Alert{City: "Srinagar", Severity: domain.SeverityHigh})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &raw))
	assert.Contains(t, raw, "lat")
	assert.Contains(t, raw, "lng")
	assert.Contains(t, raw, "severity")
	assert.Contains(t, raw, "description")
	assert.Contains(t, raw, "city")
}
