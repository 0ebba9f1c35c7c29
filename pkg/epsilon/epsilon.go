// Package epsilon holds the three ε constants that every sweep, compare,
// and quantization operation in csg2d is parameterized on. Per spec §5
// these are read-only once configured; Config is passed by value into
// every package that needs it rather than kept as mutable package state,
// so that concurrent per-layer workers (see pkg/layerdriver) never race
// on it — this is the same determinism argument the teacher's
// engine.Engine made for giving every Evaluate call a fresh sandbox.
package epsilon

import (
	"fmt"

	"github.com/thinlayer/csg2d/pkg/diag"
)

// Config bundles the three global epsilon values.
type Config struct {
	// PT is the quantization grid: all coordinates are snapped to a
	// multiple of PT before any comparison or point-dictionary lookup.
	PT float64
	// EQ is the "equal" threshold for two quantized coordinates.
	// Default sets it to PT²; Validate requires only EQ <= PT.
	EQ float64
	// SQR bounds products/determinants computed from quantized values.
	SQR float64
}

// Default returns the spec-mandated default configuration:
// PT = 1/512, EQ = PT², SQR = EQ².
func Default() Config {
	pt := 1.0 / 512.0
	eq := pt * pt
	return Config{PT: pt, EQ: eq, SQR: eq * eq}
}

// Validate checks that cfg is internally consistent: every value must
// be strictly positive, and SQR ≤ EQ ≤ PT must hold. A Configuration
// error (spec §7) is the only error this package ever produces, and it
// is always Fail severity since a bad epsilon configuration makes
// every downstream computation meaningless.
func (cfg Config) Validate() *diag.Record {
	if cfg.PT <= 0 || cfg.EQ <= 0 || cfg.SQR <= 0 {
		return &diag.Record{
			Message:  fmt.Sprintf("epsilon configuration must be strictly positive: PT=%g EQ=%g SQR=%g", cfg.PT, cfg.EQ, cfg.SQR),
			Severity: diag.Fail,
		}
	}
	if !(cfg.SQR <= cfg.EQ && cfg.EQ <= cfg.PT) {
		return &diag.Record{
			Message:  fmt.Sprintf("epsilon configuration must satisfy SQR <= EQ <= PT: got SQR=%g EQ=%g PT=%g", cfg.SQR, cfg.EQ, cfg.PT),
			Severity: diag.Fail,
		}
	}
	return nil
}

// Clamp returns a Config with EQ and SQR pulled down so that
// SQR <= EQ <= PT holds, leaving PT untouched. Used by a driver that
// wants to accept a caller-supplied PT but derive sane EQ/SQR instead
// of rejecting a merely-inconsistent (not nonsensical) configuration.
func (cfg Config) Clamp() Config {
	out := cfg
	if out.EQ > out.PT {
		out.EQ = out.PT
	}
	if out.SQR > out.EQ {
		out.SQR = out.EQ
	}
	return out
}
