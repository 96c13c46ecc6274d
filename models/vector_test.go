package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVector(t *testing.T) {
	tests := []struct {
		name    string
		values  []int
		wantErr bool
	}{
		{"valid", []int{4, 3, 5}, false},
		{"all min", []int{1, 1, 1}, false},
		{"all max", []int{5, 5, 5}, false},
		{"too short", []int{4, 3}, true},
		{"too long", []int{4, 3, 5, 1}, true},
		{"empty", nil, true},
		{"zero", []int{0, 3, 5}, true},
		{"six", []int{4, 6, 5}, true},
		{"negative", []int{4, 3, -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVector(tt.values)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidVector)
				assert.Equal(t, Vector{}, v)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.values, v.Slice())
		})
	}
}

func TestVectorZeroValueInvalid(t *testing.T) {
	var v Vector
	assert.ErrorIs(t, v.Validate(), ErrInvalidVector)
}

func TestVectorAgreement(t *testing.T) {
	tests := []struct {
		a, b Vector
		want int
	}{
		{Vector{5, 5, 5}, Vector{5, 5, 5}, 3},
		{Vector{5, 5, 5}, Vector{5, 5, 4}, 2},
		{Vector{4, 3, 5}, Vector{4, 3, 2}, 2},
		{Vector{1, 2, 3}, Vector{3, 2, 1}, 1},
		{Vector{1, 1, 1}, Vector{2, 2, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"_vs_"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Agreement(tt.b))
			assert.Equal(t, tt.want, tt.b.Agreement(tt.a))
		})
	}
}

func TestVectorString(t *testing.T) {
	assert.Equal(t, "4,3,5", Vector{4, 3, 5}.String())
}

func TestVectorJSON(t *testing.T) {
	data, err := json.Marshal(map[int]Vector{3: {4, 3, 5}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"3":[4,3,5]}`, string(data))
}

func TestProposalStatus(t *testing.T) {
	var p Proposal
	assert.Equal(t, StatusPending, p.ReconcileStatus())
}
