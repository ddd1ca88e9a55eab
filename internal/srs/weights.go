package srs

import "math"

// Weights is the 17-value FSRS parameter vector, unpacked into named
// fields for the formulas that use them.
type Weights struct {
	InitStabFail float64 // w[0]
	InitStabHard float64 // w[1]
	InitStabOkay float64 // w[2]
	InitStabEasy float64 // w[3]

	DiffBase      float64 // w[4]
	InitDiffScale float64 // w[5]
	DiffUpdScale  float64 // w[6]
	DiffUpdMeanRev float64 // w[7]

	StabUpdPassScale float64 // exp(w[8])
	StabUpdPassStab  float64 // w[9]
	StabUpdPassRetr  float64 // w[10]
	StabUpdPassMultHard float64 // w[15]
	StabUpdPassMultEasy float64 // w[16]

	StabUpdFailScale float64 // w[11]
	StabUpdFailDiff  float64 // w[12]
	StabUpdFailStab  float64 // w[13]
	StabUpdFailRetr  float64 // w[14]
}

// WeightsFromVector unpacks the canonical 17-element FSRS weight
// vector into named fields. w[8] is pre-exponentiated, matching the
// reference formulation's "no reason not to inline this" comment.
func WeightsFromVector(w [17]float64) Weights {
	return Weights{
		InitStabFail:   w[0],
		InitStabHard:   w[1],
		InitStabOkay:   w[2],
		InitStabEasy:   w[3],
		DiffBase:       w[4],
		InitDiffScale:  w[5],
		DiffUpdScale:   w[6],
		DiffUpdMeanRev: w[7],

		StabUpdPassScale: math.Exp(w[8]),
		StabUpdPassStab:  w[9],
		StabUpdPassRetr:  w[10],

		StabUpdFailScale: w[11],
		StabUpdFailDiff:  w[12],
		StabUpdFailStab:  w[13],
		StabUpdFailRetr:  w[14],

		StabUpdPassMultHard: w[15],
		StabUpdPassMultEasy: w[16],
	}
}

func (w Weights) initialStability(g Grade) float64 {
	switch g {
	case Fail:
		return w.InitStabFail
	case Hard:
		return w.InitStabHard
	case Okay:
		return w.InitStabOkay
	default:
		return w.InitStabEasy
	}
}

func (w Weights) stabilityPassUpdateBonus(g Grade) float64 {
	switch g {
	case Hard:
		return w.StabUpdPassMultHard
	case Easy:
		return w.StabUpdPassMultEasy
	default:
		return 1
	}
}
