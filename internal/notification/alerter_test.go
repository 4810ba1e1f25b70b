package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlerter(t *testing.T) {
	alerter, err := NewAlerter("", "")
	require.NoError(t, err)
	assert.IsType(t, LogAlerter{}, alerter)
	assert.NoError(t, alerter.Alert(context.Background(), "new listing awaiting review"))

	alerter, err = NewAlerter("bot-token", "123456")
	require.NoError(t, err)
	assert.IsType(t, &DiscordAlerter{}, alerter)
}
