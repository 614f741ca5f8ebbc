package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextUnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Text
		wantErr bool
	}{
		{name: "string", input: `"500"`, want: "500"},
		{name: "integer", input: `500`, want: "500"},
		{name: "fraction keeps its digits", input: `0.10`, want: "0.10"},
		{name: "exponent", input: `1e3`, want: "1e3"},
		{name: "boolean", input: `true`, want: "true"},
		{name: "null leaves the field empty", input: `null`, want: ""},
		{name: "object", input: `{"a":1}`, wantErr: true},
		{name: "array", input: `[1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManualStakingAcceptsNumbers(t *testing.T) {
	var m ManualStaking
	err := json.Unmarshal([]byte(`{"stakedAmount":500,"APR":0.12,"LockDate":"2024-09-01","MaxUnlockDate":"2025-09-01","RewardsNow":3,"RewardsMUD":"4"}`), &m)
	require.NoError(t, err)

	assert.Equal(t, ManualStaking{
		StakedAmount:  "500",
		APR:           "0.12",
		LockDate:      "2024-09-01",
		MaxUnlockDate: "2025-09-01",
		RewardsNow:    "3",
		RewardsMUD:    "4",
	}, m)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stakedAmount":"500"`)
}
