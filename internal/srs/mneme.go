package srs

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// MnemeState is one point-in-time snapshot of a mneme's memory-model
// parameters: the grade that produced it, its coarse status, the
// stability/difficulty pair the next review's formulas will read, and
// the due/reviewed timestamps that date it.
type MnemeState struct {
	ID         uuid.UUID
	Grade      Grade
	Status     Status
	DueAt      time.Time
	ReviewedAt time.Time
	Difficulty float64
	Stability  float64
}

// Mneme is a reviewable unit of memory: an immutable identity and
// creation time, plus the current state and next due date.
type Mneme struct {
	ID        uuid.UUID
	CreatedAt time.Time
	NextDue   time.Time
	State     MnemeState
}

// WithHistory pairs a Mneme with its append-only list of past states,
// oldest first. The current state lives in Mneme.State, not here.
type WithHistory struct {
	Mneme   Mneme
	History []MnemeState
}

// theoreticalInterval returns the point in time at which
// retrievability would decay to the target retention value, clamped
// to [1 day, MaxIntervalDays] and rounded per Params.RoundToDays.
func theoreticalInterval(p Params, stability float64) time.Duration {
	d := 9.0 * stability * (-1.0 + 1.0/p.TargetRetention)
	if p.RoundToDays {
		days := clamp(math.Round(d), 1, float64(p.MaxIntervalDays))
		return time.Duration(days) * 24 * time.Hour
	}
	d = clamp(d, 1.0, float64(p.MaxIntervalDays))
	seconds := math.Round(d * 86400)
	return time.Duration(seconds) * time.Second
}

func stabilityPassUpdateBase(p Params, difficulty, stability, retrievability float64) float64 {
	w := p.Weights
	return w.StabUpdPassScale *
		math.Pow(stability, -w.StabUpdPassStab) *
		math.Expm1(w.StabUpdPassRetr*(1-retrievability)) *
		(1.0 + p.MaxDifficulty - difficulty)
}

func stabilityFailUpdate(p Params, difficulty, stability, retrievability float64) float64 {
	w := p.Weights
	return w.StabUpdFailScale *
		math.Pow(difficulty, -w.StabUpdFailDiff) *
		math.Exp(w.StabUpdFailRetr*(1-retrievability)) *
		(math.Pow(1.0+stability, w.StabUpdFailStab) - 1.0)
}

// stabilityForGrade computes the stability a review graded g would
// produce, starting from (difficulty, stability) — the pre-review
// values, never the in-progress update.
func stabilityForGrade(p Params, difficulty, stability float64, g Grade, retrievability float64) float64 {
	if g == Fail {
		return stabilityFailUpdate(p, difficulty, stability, retrievability)
	}
	changeFactor := 1.0 + stabilityPassUpdateBase(p, difficulty, stability, retrievability)*p.Weights.stabilityPassUpdateBonus(g)
	return stability * changeFactor
}

func intervalForGrade(p Params, difficulty, stability float64, g Grade, retrievability float64) time.Duration {
	return theoreticalInterval(p, stabilityForGrade(p, difficulty, stability, g, retrievability))
}

// Init creates a new mneme from its first graded review.
func Init(p Params, grade Grade, now time.Time) Mneme {
	return InitWithID(p, grade, now, uuid.New(), uuid.New())
}

// InitWithID is Init with explicit identifiers, for deterministic
// tests and for callers restoring a mneme from storage.
func InitWithID(p Params, grade Grade, now time.Time, id, stateID uuid.UUID) Mneme {
	w := p.Weights
	difficulty := clamp(w.DiffBase-grade.factor()*w.InitDiffScale, p.MinDifficulty, p.MaxDifficulty)
	stability := math.Max(w.initialStability(grade), p.MinInitialStability)

	var interval time.Duration
	status := Learning
	switch grade {
	case Fail:
		interval = p.FirstInterval
	case Hard:
		interval = p.SecondInterval
	case Okay:
		interval = p.ThirdInterval
	case Easy:
		interval = theoreticalInterval(p, stability)
		status = Reviewing
	}

	return Mneme{
		ID:        id,
		CreatedAt: now,
		NextDue:   now.Add(interval),
		State: MnemeState{
			ID:         stateID,
			Grade:      grade,
			Status:     status,
			DueAt:      now,
			ReviewedAt: now,
			Difficulty: difficulty,
			Stability:  stability,
		},
	}
}

func transition(current Status, g Grade) Status {
	switch {
	case (current == Learning || current == Relearning) && (g == Okay || g == Easy):
		return Reviewing
	case current == Reviewing && g == Fail:
		return Relearning
	default:
		return current
	}
}

// Review grades a mneme, returning its updated state. The current
// status (before transition) selects which formulas apply: Learning
// and Relearning reviews only adjust the interval; Reviewing reviews
// update stability and difficulty too.
func Review(m Mneme, p Params, grade Grade, now time.Time) Mneme {
	return ReviewWithID(m, p, grade, now, uuid.New())
}

// ReviewWithID is Review with an explicit new-state identifier.
func ReviewWithID(m Mneme, p Params, grade Grade, now time.Time, newStateID uuid.UUID) Mneme {
	w := p.Weights
	cur := m.State
	daysSince := float64(int64(now.Sub(cur.ReviewedAt) / (24 * time.Hour)))
	retrievability := math.Pow(1.0+daysSince/(9.0*cur.Stability), -1)

	newStatus := transition(cur.Status, grade)
	difficulty := cur.Difficulty
	stability := cur.Stability

	var interval time.Duration
	switch cur.Status {
	case Learning, Relearning:
		okayInterval := intervalForGrade(p, cur.Difficulty, cur.Stability, Okay, retrievability)
		minEasyInterval := p.IntervalStep + okayInterval
		easyInterval := maxDuration(minEasyInterval, intervalForGrade(p, cur.Difficulty, cur.Stability, Easy, retrievability))
		switch grade {
		case Fail:
			interval = p.SecondInterval
		case Hard:
			interval = p.ThirdInterval
		case Okay:
			interval = okayInterval
		case Easy:
			interval = easyInterval
		}
	case Reviewing:
		stability = stabilityForGrade(p, cur.Difficulty, cur.Stability, grade, retrievability)
		difficulty = clamp(
			w.DiffUpdMeanRev*w.DiffBase+(1-w.DiffUpdMeanRev)*(cur.Difficulty-grade.factor()*w.DiffUpdScale),
			p.MinDifficulty, p.MaxDifficulty,
		)
		theoHard := intervalForGrade(p, cur.Difficulty, cur.Stability, Hard, retrievability)
		theoOkay := intervalForGrade(p, cur.Difficulty, cur.Stability, Okay, retrievability)
		theoEasy := intervalForGrade(p, cur.Difficulty, cur.Stability, Easy, retrievability)
		hardInterval := minDuration(theoHard, theoOkay)
		okayInterval := maxDuration(theoOkay, p.IntervalStep+hardInterval)
		easyInterval := maxDuration(theoEasy, p.IntervalStep+okayInterval)
		switch grade {
		case Fail:
			interval = p.SecondInterval
		case Hard:
			interval = hardInterval
		case Okay:
			interval = okayInterval
		case Easy:
			interval = easyInterval
		}
	}

	newState := MnemeState{
		ID:         newStateID,
		Grade:      grade,
		Status:     newStatus,
		DueAt:      m.NextDue,
		ReviewedAt: now,
		Difficulty: difficulty,
		Stability:  stability,
	}
	return Mneme{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		NextDue:   now.Add(interval),
		State:     newState,
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// ReviewHistory appends the current state to history and applies
// Review, matching the append-only history invariant.
func ReviewHistory(item WithHistory, p Params, grade Grade, now time.Time) WithHistory {
	return ReviewHistoryWithID(item, p, grade, now, uuid.New())
}

// ReviewHistoryWithID is ReviewHistory with an explicit new-state
// identifier, for deterministic tests.
func ReviewHistoryWithID(item WithHistory, p Params, grade Grade, now time.Time, newStateID uuid.UUID) WithHistory {
	history := append(append([]MnemeState(nil), item.History...), item.Mneme.State)
	return WithHistory{
		Mneme:   ReviewWithID(item.Mneme, p, grade, now, newStateID),
		History: history,
	}
}
