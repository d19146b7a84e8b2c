package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditEventListEnvelopes(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		var list AuditEventList
		require.NoError(t, json.Unmarshal(
			[]byte(`[{"id":"e1","action":"updated"}]`), &list))
		require.Len(t, list.Events, 1)
		assert.Equal(t, "updated", list.Events[0].Action)
	})

	t.Run("events envelope", func(t *testing.T) {
		var list AuditEventList
		require.NoError(t, json.Unmarshal(
			[]byte(`{"events":[{"id":"e1"},{"id":"e2"}]}`), &list))
		assert.Len(t, list.Events, 2)
	})

	t.Run("data envelope", func(t *testing.T) {
		var list AuditEventList
		require.NoError(t, json.Unmarshal(
			[]byte(`{"data":[{"id":"e1"}]}`), &list))
		assert.Len(t, list.Events, 1)
	})

	t.Run("empty object", func(t *testing.T) {
		var list AuditEventList
		require.NoError(t, json.Unmarshal([]byte(`{}`), &list))
		assert.Empty(t, list.Events)
	})

	t.Run("malformed", func(t *testing.T) {
		var list AuditEventList
		assert.Error(t, json.Unmarshal([]byte(`"nope"`), &list))
	})
}
