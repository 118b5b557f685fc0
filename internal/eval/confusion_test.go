package eval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfusion(t *testing.T) {
	truth := []int{1, 1, 1, 2, 2, 3}
	pred := []int{1, 1, 2, 2, 2, 1}

	cm, err := Confusion(truth, pred, []int{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, 6.0, cm.Total())
	assert.Equal(t, 2.0, cm.At(1, 1))
	assert.Equal(t, 1.0, cm.At(1, 2))
	assert.Equal(t, 2.0, cm.At(2, 2))
	assert.Equal(t, 1.0, cm.At(3, 1))
	assert.Equal(t, 0.0, cm.At(3, 3))

	assert.Equal(t, [][]int{
		{2, 1, 0},
		{0, 2, 0},
		{1, 0, 0},
	}, cm.Counts())
	assert.Equal(t, []int{1, 2, 3}, cm.Codes())
}

func TestAccuracy(t *testing.T) {
	cm, err := Confusion(
		[]int{1, 1, 1, 1, 2, 2, 2, 2, 2, 2},
		[]int{1, 1, 1, 2, 2, 2, 2, 2, 1, 1},
		[]int{1, 2},
	)
	require.NoError(t, err)
	// 3 + 4 correct of 10.
	assert.InDelta(t, 0.7, cm.Accuracy(), 1e-12)
}

func TestKappa(t *testing.T) {
	// Worked example: po = 0.7, pe = 0.4*0.5 + 0.6*0.5 = 0.5,
	// kappa = (0.7-0.5)/(1-0.5) = 0.4.
	cm, err := Confusion(
		[]int{1, 1, 1, 1, 2, 2, 2, 2, 2, 2},
		[]int{1, 1, 1, 2, 2, 2, 2, 2, 1, 1},
		[]int{1, 2},
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, cm.Kappa(), 1e-12)
}

func TestKappa_PerfectAgreement(t *testing.T) {
	cm, err := Confusion([]int{1, 2, 3, 1}, []int{1, 2, 3, 1}, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, cm.Accuracy())
	assert.InDelta(t, 1.0, cm.Kappa(), 1e-12)
}

func TestKappa_ChanceOnlyAgreement(t *testing.T) {
	// Predictions constant while truth is constant too: pe == 1, defined as 1.
	cm, err := Confusion([]int{1, 1, 1}, []int{1, 1, 1}, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, cm.Kappa())
	assert.False(t, math.IsNaN(cm.Kappa()))
}

func TestConfusion_Errors(t *testing.T) {
	tests := []struct {
		name    string
		truth   []int
		pred    []int
		codes   []int
		wantErr string
	}{
		{
			name:    "length mismatch",
			truth:   []int{1, 2},
			pred:    []int{1},
			codes:   []int{1, 2},
			wantErr: "true labels",
		},
		{
			name:    "empty labels",
			truth:   nil,
			pred:    nil,
			codes:   []int{1},
			wantErr: "no labels",
		},
		{
			name:    "empty code set",
			truth:   []int{1},
			pred:    []int{1},
			codes:   nil,
			wantErr: "empty code set",
		},
		{
			name:    "duplicate code",
			truth:   []int{1},
			pred:    []int{1},
			codes:   []int{1, 1},
			wantErr: "duplicate code",
		},
		{
			name:    "unknown true label",
			truth:   []int{9},
			pred:    []int{1},
			codes:   []int{1, 2},
			wantErr: "true label 9",
		},
		{
			name:    "unknown predicted label",
			truth:   []int{1},
			pred:    []int{9},
			codes:   []int{1, 2},
			wantErr: "predicted label 9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Confusion(tt.truth, tt.pred, tt.codes)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestString(t *testing.T) {
	cm, err := Confusion([]int{101, 102}, []int{101, 101}, []int{101, 102})
	require.NoError(t, err)
	s := cm.String()
	assert.Contains(t, s, "101")
	assert.Contains(t, s, "102")
}
