package analysis

import (
	"math"
	"testing"

	pkgerrors "crosstalk/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrixFromData(t *testing.T, clusters []string, data [][]float64) *SignalingMatrix {
	t.Helper()
	m := NewSignalingMatrix(clusters)
	for i, row := range data {
		for j, v := range row {
			m.Set(i, j, v)
		}
	}
	return m
}

func TestTransform_Identity(t *testing.T) {
	m := matrixFromData(t, []string{"A", "B"}, [][]float64{
		{1, 2},
		{3, 4},
	})

	out, err := m.Transform(DefaultTransformOptions())

	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, out.Data())
}

func TestTransform_DoesNotMutateReceiver(t *testing.T) {
	m := matrixFromData(t, []string{"A", "B"}, [][]float64{
		{1, 2},
		{3, 4},
	})

	opts := DefaultTransformOptions()
	opts.Scale = ScaleSquare
	_, err := m.Transform(opts)

	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, m.Data())
}

func TestTransform_ClampThenScaleThenNormalize(t *testing.T) {
	// The fixed order matters: clamping 9 down to 4 before squaring
	// yields 16, not 81 clamped afterwards.
	m := matrixFromData(t, []string{"A", "B"}, [][]float64{
		{9, 1},
		{2, 0},
	})

	opts := TransformOptions{
		MinThresh: 0,
		MaxThresh: 4,
		Scale:     ScaleSquare,
		Normalize: NormalizeRow,
	}
	out, err := m.Transform(opts)

	require.NoError(t, err)
	// Row 0 after clamp+square is {16, 1}, normalized by 16
	assert.InDelta(t, 1.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0/16.0, out.At(0, 1), 1e-12)
	// Row 1 after clamp+square is {4, 0}, normalized by 4
	assert.InDelta(t, 1.0, out.At(1, 0), 1e-12)
	assert.InDelta(t, 0.0, out.At(1, 1), 1e-12)
}

func TestTransform_SqrtScale(t *testing.T) {
	m := matrixFromData(t, []string{"A", "B"}, [][]float64{
		{4, 9},
		{16, 0},
	})

	opts := DefaultTransformOptions()
	opts.Scale = ScaleSqrt
	out, err := m.Transform(opts)

	require.NoError(t, err)
	assert.InDelta(t, 2, out.At(0, 0), 1e-12)
	assert.InDelta(t, 3, out.At(0, 1), 1e-12)
	assert.InDelta(t, 4, out.At(1, 0), 1e-12)
}

func TestTransform_SqrtOfNegativeFails(t *testing.T) {
	m := matrixFromData(t, []string{"A"}, [][]float64{{-1}})

	opts := DefaultTransformOptions()
	opts.Scale = ScaleSqrt
	_, err := m.Transform(opts)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainError(err))
}

func TestTransform_LogOfNegativeFails(t *testing.T) {
	m := matrixFromData(t, []string{"A"}, [][]float64{{-0.5}})

	opts := DefaultTransformOptions()
	opts.Scale = ScaleLog
	_, err := m.Transform(opts)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainError(err))
}

func TestTransform_ColumnNormalize(t *testing.T) {
	m := matrixFromData(t, []string{"A", "B"}, [][]float64{
		{2, 0},
		{8, 0},
	})

	opts := DefaultTransformOptions()
	opts.Normalize = NormalizeColumn
	out, err := m.Transform(opts)

	require.NoError(t, err)
	assert.InDelta(t, 0.25, out.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0, out.At(1, 0), 1e-12)
	// An all-zero column stays zero instead of dividing by zero
	assert.Equal(t, 0.0, out.At(0, 1))
	assert.Equal(t, 0.0, out.At(1, 1))
}

func TestTransform_NormalizeIsIdempotent(t *testing.T) {
	m := matrixFromData(t, []string{"A", "B", "C"}, [][]float64{
		{2, 0, 5},
		{8, 4, 0},
		{0, 0, 0},
	})

	for _, mode := range []NormalizeMode{NormalizeRow, NormalizeColumn} {
		opts := DefaultTransformOptions()
		opts.Normalize = mode

		once, err := m.Transform(opts)
		require.NoError(t, err)
		twice, err := once.Transform(opts)
		require.NoError(t, err)

		// Every row/col max is already 1 (or all-zero), so a second
		// normalization changes nothing
		assert.Equal(t, once.Data(), twice.Data(), "mode %s", mode)
	}
}

func TestTransform_InvalidThresholdOrder(t *testing.T) {
	m := NewSignalingMatrix([]string{"A"})

	opts := DefaultTransformOptions()
	opts.MinThresh = 5
	opts.MaxThresh = 1
	_, err := m.Transform(opts)

	require.Error(t, err)
}

func TestTransform_UnknownModes(t *testing.T) {
	m := NewSignalingMatrix([]string{"A"})

	opts := DefaultTransformOptions()
	opts.Scale = ScaleMode("cubic")
	_, err := m.Transform(opts)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConfigError(err))

	opts = DefaultTransformOptions()
	opts.Normalize = NormalizeMode("diag")
	_, err = m.Transform(opts)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConfigError(err))
}

func TestTransformOptions_ValidateScaleSet(t *testing.T) {
	opts := DefaultTransformOptions()
	opts.Scale = ScaleSquare

	// "sq" is only valid where the caller admits it
	assert.Error(t, opts.Validate(ScaleNone, ScaleSqrt, ScaleLog))
	assert.NoError(t, opts.Validate(ScaleNone, ScaleSqrt, ScaleLog, ScaleSquare))
}

func TestTransform_ClampWithInfiniteBounds(t *testing.T) {
	m := matrixFromData(t, []string{"A"}, [][]float64{{123.5}})

	out, err := m.Transform(DefaultTransformOptions())

	require.NoError(t, err)
	assert.False(t, math.IsInf(out.At(0, 0), 0))
	assert.Equal(t, 123.5, out.At(0, 0))
}
