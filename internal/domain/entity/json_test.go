package entity

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitiesCarryLegacyID(t *testing.T) {
	id := uuid.New()
	cases := map[string]interface{}{
		"product":     Product{ID: id},
		"customer":    Customer{ID: id},
		"order":       Order{ID: id},
		"order item":  OrderItem{ID: id},
		"transaction": Transaction{ID: id},
		"user":        User{ID: id},
	}

	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			raw, err := json.Marshal(v)
			require.NoError(t, err)

			var out map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &out))
			assert.Equal(t, id.String(), out["id"])
			assert.Equal(t, id.String(), out["_id"])
		})
	}
}

func TestUserJSONHidesSecrets(t *testing.T) {
	raw, err := json.Marshal(User{Name: "till", Password: "hash", TokenVersion: 3})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "tokenVersion")
}
