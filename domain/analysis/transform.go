package analysis

import (
	"math"

	pkgerrors "crosstalk/pkg/errors"
)

// ScaleMode selects the elementwise scaling applied to a signaling matrix
type ScaleMode string

const (
	ScaleNone   ScaleMode = "none"
	ScaleSqrt   ScaleMode = "sqrt"
	ScaleLog    ScaleMode = "log"
	ScaleSquare ScaleMode = "sq"
)

// NormalizeMode selects row or column max-normalization
type NormalizeMode string

const (
	NormalizeNone   NormalizeMode = "none"
	NormalizeRow    NormalizeMode = "row"
	NormalizeColumn NormalizeMode = "col"
)

// TransformOptions configures a matrix transform. The order of
// operations is a fixed contract: clamp, then scale, then normalize.
// Callers relying on pre-normalization thresholds would get different
// results if the order were swapped.
type TransformOptions struct {
	MinThresh float64
	MaxThresh float64
	Scale     ScaleMode
	Normalize NormalizeMode
}

// DefaultTransformOptions returns an identity transform: unbounded
// thresholds, no scaling, no normalization
func DefaultTransformOptions() TransformOptions {
	return TransformOptions{
		MinThresh: math.Inf(-1),
		MaxThresh: math.Inf(1),
		Scale:     ScaleNone,
		Normalize: NormalizeNone,
	}
}

// Validate checks the option enums against an allowed scale-mode set.
// The supported scale modes are context dependent: the cluster-network
// view admits "sq" while the matrix view does not, so each caller names
// the modes it accepts.
func (o TransformOptions) Validate(allowedScales ...ScaleMode) error {
	if o.MinThresh > o.MaxThresh {
		return pkgerrors.NewValidationError("min_thresh must not exceed max_thresh")
	}
	scaleOK := false
	allowed := make([]string, 0, len(allowedScales))
	for _, s := range allowedScales {
		allowed = append(allowed, string(s))
		if o.Scale == s {
			scaleOK = true
		}
	}
	if !scaleOK {
		return pkgerrors.NewConfigError("scale mode", string(o.Scale), allowed...)
	}
	switch o.Normalize {
	case NormalizeNone, NormalizeRow, NormalizeColumn:
	default:
		return pkgerrors.NewConfigError("normalize mode", string(o.Normalize),
			string(NormalizeNone), string(NormalizeRow), string(NormalizeColumn))
	}
	return nil
}

// Transform applies clamp, scale, and normalize in that fixed order and
// returns a new matrix; the receiver is never mutated. Scaling a matrix
// with negative entries after clamping under sqrt or log is a domain
// error since the caller must guarantee non-negativity for those modes.
func (m *SignalingMatrix) Transform(opts TransformOptions) (*SignalingMatrix, error) {
	switch opts.Scale {
	case ScaleNone, ScaleSqrt, ScaleLog, ScaleSquare:
	default:
		return nil, pkgerrors.NewConfigError("scale mode", string(opts.Scale),
			string(ScaleNone), string(ScaleSqrt), string(ScaleLog), string(ScaleSquare))
	}
	switch opts.Normalize {
	case NormalizeNone, NormalizeRow, NormalizeColumn:
	default:
		return nil, pkgerrors.NewConfigError("normalize mode", string(opts.Normalize),
			string(NormalizeNone), string(NormalizeRow), string(NormalizeColumn))
	}
	if opts.MinThresh > opts.MaxThresh {
		return nil, pkgerrors.NewValidationError("min_thresh must not exceed max_thresh")
	}

	out := m.Clone()
	rows, cols := out.Dims()

	// Clamp
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := out.data[i][j]
			if v > opts.MaxThresh {
				v = opts.MaxThresh
			}
			if v < opts.MinThresh {
				v = opts.MinThresh
			}
			out.data[i][j] = v
		}
	}

	// Scale
	if opts.Scale != ScaleNone {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				v := out.data[i][j]
				switch opts.Scale {
				case ScaleSqrt:
					if v < 0 {
						return nil, pkgerrors.NewDomainError("cannot take square root of negative matrix entries").
							WithDetail("row", out.rows[i].String()).
							WithDetail("col", out.cols[j].String())
					}
					out.data[i][j] = math.Sqrt(v)
				case ScaleLog:
					if v < 0 {
						return nil, pkgerrors.NewDomainError("cannot take log of negative matrix entries").
							WithDetail("row", out.rows[i].String()).
							WithDetail("col", out.cols[j].String())
					}
					out.data[i][j] = math.Log10(v)
				case ScaleSquare:
					out.data[i][j] = v * v
				}
			}
		}
	}

	// Normalize
	switch opts.Normalize {
	case NormalizeRow:
		for i := 0; i < rows; i++ {
			max := 0.0
			for j := 0; j < cols; j++ {
				if abs := math.Abs(out.data[i][j]); abs > max {
					max = abs
				}
			}
			if max == 0 {
				continue // an all-zero row stays zero
			}
			for j := 0; j < cols; j++ {
				out.data[i][j] /= max
			}
		}
	case NormalizeColumn:
		for j := 0; j < cols; j++ {
			max := 0.0
			for i := 0; i < rows; i++ {
				if abs := math.Abs(out.data[i][j]); abs > max {
					max = abs
				}
			}
			if max == 0 {
				continue
			}
			for i := 0; i < rows; i++ {
				out.data[i][j] /= max
			}
		}
	}

	return out, nil
}
