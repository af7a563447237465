package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestTopicPatchFullApply(t *testing.T) {
	patch := TopicPatch{
		ID:       7,
		Title:    strPtr("Releases"),
		IsHidden: boolPtr(true),
		NotifySettings: &NotifySettings{
			MutedUntil: 100,
		},
	}

	topic := patch.Apply(nil)
	require.NotNil(t, topic)
	assert.Equal(t, int64(7), topic.ID)
	assert.Equal(t, "Releases", topic.Title)
	assert.True(t, topic.IsHidden)
	assert.False(t, topic.IsMin)
	assert.Equal(t, int64(100), topic.NotifySettings.MutedUntil)
}

func TestTopicPatchMinKeepsRicherFields(t *testing.T) {
	full := TopicPatch{
		ID:             7,
		Title:          strPtr("Releases"),
		IsHidden:       boolPtr(true),
		IsPinned:       boolPtr(true),
		NotifySettings: &NotifySettings{MutedUntil: 100},
	}.Apply(nil)

	minPatch := TopicPatch{
		ID:             7,
		Title:          strPtr("Releases (archived)"),
		IsHidden:       boolPtr(false),
		IsPinned:       boolPtr(false),
		NotifySettings: &NotifySettings{MutedUntil: 0},
		IsMin:          true,
	}
	next := minPatch.Apply(full)

	assert.Equal(t, "Releases (archived)", next.Title)
	assert.True(t, next.IsHidden, "min snapshot must not clear hidden")
	assert.True(t, next.IsPinned, "min snapshot must not clear pinned")
	assert.Equal(t, int64(100), next.NotifySettings.MutedUntil)
	assert.False(t, next.IsMin, "known full topic stays full")
}

func TestTopicPatchMinFirstSighting(t *testing.T) {
	topic := TopicPatch{ID: 9, Title: strPtr("Intro"), IsMin: true}.Apply(nil)

	assert.True(t, topic.IsMin)

	full := TopicPatch{ID: 9, IsHidden: boolPtr(true)}.Apply(topic)
	assert.False(t, full.IsMin, "full patch clears the min marker")
	assert.True(t, full.IsHidden)
}
