package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchBody struct {
	Title       Field[string] `json:"title,omitzero"`
	Description Field[string] `json:"description,omitzero"`
}

func TestField_DistinguishesAbsentFromNull(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *string
	}{
		{name: "absent", body: `{"title":"x"}`, wantSet: false},
		{name: "null", body: `{"description":null}`, wantSet: true},
		{name: "value", body: `{"description":"  hi "}`, wantSet: true, wantValue: ptr("  hi ")},
		{name: "empty string", body: `{"description":""}`, wantSet: true, wantValue: ptr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p patchBody
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			assert.Equal(t, tt.wantSet, p.Description.Set)
			assert.Equal(t, tt.wantValue, p.Description.Value)
		})
	}
}

func TestField_ReencodingKeepsPresence(t *testing.T) {
	in := patchBody{Description: Null[string]()}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":null}`, string(data))

	var out patchBody
	require.NoError(t, json.Unmarshal(data, &out))
	assert.False(t, out.Title.Set)
	assert.True(t, out.Description.Set)
	assert.Nil(t, out.Description.Value)
}

func TestField_RejectsWrongType(t *testing.T) {
	var p patchBody
	err := json.Unmarshal([]byte(`{"title":42}`), &p)
	assert.Error(t, err)
}

func ptr(s string) *string { return &s }
