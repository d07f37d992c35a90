package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_MarshalJSON(t *testing.T) {
	tests := map[Money]string{
		0:      "0.00",
		5:      "5.00",
		12.5:   "12.50",
		999.99: "999.99",
	}
	for in, want := range tests {
		b, err := json.Marshal(in)
		require.NoError(t, err)
		assert.Equal(t, want, string(b))
	}

	b, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{MoneyFromCents(1234)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":12.34}`, string(b))
}
