package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	published := time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC)
	incident := domain.Incident{
		ID:        "dock-fire-lake-ozark",
		Title:     "Dock fire at Lake Ozark",
		Category:  domain.CategoryFire,
		Severity:  domain.SeverityAlert,
		Source:    "lake-news",
		Timestamp: published,
		Lat:       38.1981,
		Lng:       -92.6388,
	}

	msg, err := serializeToMessage(incident)
	require.NoError(t, err)

	assert.Equal(t, []byte("dock-fire-lake-ozark"), msg.Key)
	assert.Contains(t, string(msg.Value), `"category":"fire"`)
	assert.Contains(t, string(msg.Value), `"severity":"alert"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "category", msg.Headers[0].Key)
	assert.Equal(t, []byte("fire"), msg.Headers[0].Value)
	assert.Equal(t, "published_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(published.Format(time.RFC3339)), msg.Headers[1].Value)
}
