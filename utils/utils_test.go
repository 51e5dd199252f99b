package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatFloat(t *testing.T) {
	require.Equal(t, 1.235, FormatFloat(1.23456, 3))
	require.Equal(t, 1.2, FormatFloat(1.23456, 1))
	require.True(t, math.IsNaN(FormatFloat(math.NaN(), 3)))
	require.True(t, math.IsInf(FormatFloat(math.Inf(1), 3), 1))
}

func TestLinspace(t *testing.T) {
	grid := Linspace(0, 1, 5)
	require.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, grid)
	require.Equal(t, []float64{2}, Linspace(2, 5, 1))
}

func TestOnes(t *testing.T) {
	require.Equal(t, []float64{1, 1, 1}, Ones(3))
	require.Empty(t, Ones(0))
}
