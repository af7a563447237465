package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadIDMessageID(t *testing.T) {
	id, ok := TopicThreadID(42).MessageID()
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = MainThreadID.MessageID()
	assert.False(t, ok)

	_, ok = PeerThreadID("user-9x").MessageID()
	assert.False(t, ok)
}

func TestLocalMessageIDs(t *testing.T) {
	first := NextLocalMessageID()
	second := NextLocalMessageID()

	assert.Greater(t, first, LocalMessageMinID)
	assert.Greater(t, second, first)
	assert.True(t, IsLocalMessageID(first))
	assert.False(t, IsLocalMessageID(12345))
}

func TestMessageIsLocal(t *testing.T) {
	local := &Message{ID: NextLocalMessageID()}
	confirmed := &Message{ID: 1001}

	assert.True(t, local.IsLocal())
	assert.False(t, confirmed.IsLocal())
}
