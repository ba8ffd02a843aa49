package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeEvent_StreamValuesRoundTrip(t *testing.T) {
	event := NewReplyEvent(EventInsert, "reply-1", "msg-1")

	values, err := event.ToMap()
	require.NoError(t, err)
	assert.Equal(t, TableReplies, values["table"])
	assert.Equal(t, EventInsert, values["event"])

	parsed, err := ParseChangeEvent(values)
	require.NoError(t, err)
	assert.Equal(t, event, parsed)
}

func TestNewLikeEvent(t *testing.T) {
	liked := NewLikeEvent("msg-1", true)
	assert.Equal(t, TableLikes, liked.Table)
	assert.Equal(t, EventInsert, liked.Event)
	assert.Equal(t, "msg-1", liked.AffectedID)

	unliked := NewLikeEvent("msg-1", false)
	assert.Equal(t, EventDelete, unliked.Event)
}

func TestParseChangeEvent_Malformed(t *testing.T) {
	_, err := ParseChangeEvent(map[string]interface{}{})
	assert.Error(t, err)

	_, err = ParseChangeEvent(map[string]interface{}{"data": "{not json"})
	assert.Error(t, err)

	_, err = ParseChangeEvent(map[string]interface{}{"data": `{"affected_id":"x"}`})
	assert.Error(t, err)
}
