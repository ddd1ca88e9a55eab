package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var testGrades = []Grade{Okay, Okay, Okay, Okay, Okay, Fail, Fail, Okay, Okay, Okay, Okay, Okay}

var testWeights = [17]float64{
	1.14, 1.01, 5.44, 14.67, 5.3024, 1.5662, 1.2503, 0.0028, 1.5489, 0.1763, 0.9953, 2.7473,
	0.0179, 0.3105, 0.3976, 0.0, 2.0902,
}

func sampleMneme(t *testing.T, p Params, grades []Grade, delay time.Duration) WithHistory {
	t.Helper()
	now := time.Unix(0, 0).UTC()
	item := WithHistory{Mneme: InitWithID(p, Okay, now, uuid.Nil, uuid.New())}
	for _, g := range grades {
		now = item.Mneme.NextDue.Add(delay)
		item = ReviewHistoryWithID(item, p, g, now, uuid.New())
	}
	return item
}

func daysBetween(a, b time.Time) int64 {
	return int64(a.Sub(b) / (24 * time.Hour))
}

func intervalHistory(item WithHistory) []int64 {
	var h []int64
	for i := 1; i < len(item.History); i++ {
		h = append(h, daysBetween(item.History[i].DueAt, item.History[i-1].ReviewedAt))
	}
	if len(item.History) > 0 {
		prev := item.History[len(item.History)-1]
		h = append(h, daysBetween(item.Mneme.State.DueAt, prev.ReviewedAt))
		h = append(h, daysBetween(item.Mneme.NextDue, item.Mneme.State.DueAt))
	}
	return h
}

func TestIntervalHistoryGoldenVector(t *testing.T) {
	p := NewParams(testWeights)
	p.RoundToDays = true
	item := sampleMneme(t, p, testGrades, 0)
	got := intervalHistory(item)
	want := []int64{0, 5, 16, 43, 106, 236, 0, 0, 12, 25, 47, 85, 147}
	if len(got) != len(want) {
		t.Fatalf("history length = %d, want %d (got %v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("interval[%d] = %d, want %d (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestReviewMonotonicityReviewing(t *testing.T) {
	p := NewParams(testWeights)
	m := InitWithID(p, Easy, time.Unix(0, 0).UTC(), uuid.Nil, uuid.New())
	if m.State.Status != Reviewing {
		t.Fatalf("expected Easy init to enter Reviewing, got %v", m.State.Status)
	}
	now := m.NextDue
	easy := Review(m, p, Easy, now)
	okay := Review(m, p, Okay, now)
	hard := Review(m, p, Hard, now)
	if !(easy.State.Stability >= okay.State.Stability && okay.State.Stability >= hard.State.Stability) {
		t.Errorf("stability monotonicity violated: easy=%v okay=%v hard=%v",
			easy.State.Stability, okay.State.Stability, hard.State.Stability)
	}
}

func TestReviewIntervalOrdering(t *testing.T) {
	p := NewParams(testWeights)
	m := InitWithID(p, Easy, time.Unix(0, 0).UTC(), uuid.Nil, uuid.New())
	now := m.NextDue
	easy := Review(m, p, Easy, now)
	okay := Review(m, p, Okay, now)
	hard := Review(m, p, Hard, now)
	fail := Review(m, p, Fail, now)
	easyIv := easy.NextDue.Sub(now)
	okayIv := okay.NextDue.Sub(now)
	hardIv := hard.NextDue.Sub(now)
	failIv := fail.NextDue.Sub(now)
	if !(easyIv >= okayIv && okayIv >= hardIv && hardIv >= failIv) {
		t.Errorf("interval ordering violated: easy=%v okay=%v hard=%v fail=%v", easyIv, okayIv, hardIv, failIv)
	}
}

func TestDifficultyClamp(t *testing.T) {
	p := NewParams(testWeights)
	m := InitWithID(p, Okay, time.Unix(0, 0).UTC(), uuid.Nil, uuid.New())
	for _, g := range testGrades {
		m = Review(m, p, g, m.NextDue)
		if m.State.Difficulty < p.MinDifficulty || m.State.Difficulty > p.MaxDifficulty {
			t.Fatalf("difficulty %v out of [%v,%v] after grade %v", m.State.Difficulty, p.MinDifficulty, p.MaxDifficulty, g)
		}
	}
}
