package curator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
)

func TestParsePlan(t *testing.T) {
	t.Run("valid plan", func(t *testing.T) {
		plan, err := ParsePlan([]byte(`{
			"actions": [
				{"type": "update", "id": "a", "new_name": "cheddar cheese"},
				{"type": "merge", "id": "b", "merge_into": "green onion"},
				{"type": "delete", "id": "c"}
			]
		}`))
		require.NoError(t, err)
		require.Len(t, plan.Actions, 3)
		assert.Equal(t, models.CurationActionUpdate, plan.Actions[0].Type)
		assert.Equal(t, "green onion", plan.Actions[1].MergeInto)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParsePlan([]byte(`{"actions": [`))
		assert.Error(t, err)
	})

	t.Run("unknown action type", func(t *testing.T) {
		_, err := ParsePlan([]byte(`{"actions": [{"type": "rename", "id": "a"}]}`))
		assert.Error(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := ParsePlan([]byte(`{"actions": [{"type": "delete"}]}`))
		assert.Error(t, err)
	})

	t.Run("empty actions", func(t *testing.T) {
		_, err := ParsePlan([]byte(`{}`))
		assert.Error(t, err)
	})
}
