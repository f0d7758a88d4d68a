package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"
)

func newTimedGame(t *testing.T, classes []string, seed int64) *Game {
	t.Helper()
	g, err := New(Config{
		Mode:    ModeTimedTarget,
		Classes: classes,
		Rand:    rand.New(rand.NewSource(seed)),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return g
}

func TestHoldCounter_ResetsOnMismatch(t *testing.T) {
	g := newTimedGame(t, []string{"A", "B", "C"}, 1)
	target := g.Target().Label

	match := Prediction{Label: target, Confidence: 0.5}
	mismatch := Prediction{Label: "nope", Confidence: 0.9}

	// match, match, mismatch, match, match, match must not score: the
	// mismatch resets the run, leaving only 3 consecutive matches.
	for _, p := range []Prediction{match, match, mismatch, match, match, match} {
		g.HandlePrediction(p)
	}
	if g.Score() != 0 {
		t.Fatalf("score = %d, success fired before 4 consecutive matches", g.Score())
	}

	// The 4th consecutive match completes the target.
	g.HandlePrediction(match)
	if g.Score() != PointsPerSuccess {
		t.Errorf("score = %d, want %d", g.Score(), PointsPerSuccess)
	}
}

func TestHoldCounter_ResetsOnLowConfidence(t *testing.T) {
	g := newTimedGame(t, []string{"A", "B", "C"}, 1)
	target := g.Target().Label

	g.HandlePrediction(Prediction{Label: target, Confidence: 0.5})
	g.HandlePrediction(Prediction{Label: target, Confidence: 0.5})
	g.HandlePrediction(Prediction{Label: target, Confidence: 0.29}) // below 0.30
	g.HandlePrediction(Prediction{Label: target, Confidence: 0.5})
	g.HandlePrediction(Prediction{Label: target, Confidence: 0.5})
	g.HandlePrediction(Prediction{Label: target, Confidence: 0.5})

	if g.Score() != 0 {
		t.Errorf("score = %d, sub-threshold prediction must reset the hold counter", g.Score())
	}
}

func TestTimedTarget_ScoresExactlyTenAndRedraws(t *testing.T) {
	g := newTimedGame(t, []string{"A", "B", "C"}, 7)
	target := g.Target().Label

	var scores []int
	var targets []Target
	g.OnScore(func(s int) { scores = append(scores, s) })
	g.OnTarget(func(tg Target) { targets = append(targets, tg) })

	for _, conf := range []float64{0.35, 0.40, 0.31, 0.50} {
		g.HandlePrediction(Prediction{Label: target, Confidence: conf})
	}

	if g.Score() != 10 {
		t.Errorf("score = %d, want exactly 10", g.Score())
	}
	if len(scores) != 1 || scores[0] != 10 {
		t.Errorf("score callback = %v, want [10]", scores)
	}
	if len(targets) != 1 {
		t.Fatalf("expected exactly one new target, got %d", len(targets))
	}

	// Hold counter is reset: the next success needs 4 fresh matches.
	next := g.Target().Label
	for i := 0; i < 3; i++ {
		g.HandlePrediction(Prediction{Label: next, Confidence: 0.9})
	}
	if g.Score() != 10 {
		t.Errorf("score = %d after 3 matches on new target, want 10", g.Score())
	}
}

func TestFillBlank_CatScenario(t *testing.T) {
	g, err := New(Config{
		Mode:  ModeFillBlank,
		Words: StaticWords{{Text: "cat", Emoji: "🐱"}},
		Rand:  rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	target := g.Target()
	if target.Word != "cat" {
		t.Fatalf("word = %q, want cat", target.Word)
	}
	if target.BlankIndex < 1 || target.BlankIndex > 2 {
		t.Fatalf("blank index = %d, the first letter is never blanked", target.BlankIndex)
	}
	want := strings.ToUpper(string(target.Word[target.BlankIndex]))
	if target.Label != want {
		t.Fatalf("label = %q, want %q (letter at blank)", target.Label, want)
	}

	redrawn := make(chan Target, 1)
	g.OnTarget(func(tg Target) { redrawn <- tg })

	// Four consecutive predictions at 0.25 clear the 0.20 threshold.
	for i := 0; i < 4; i++ {
		g.HandlePrediction(Prediction{Label: target.Label, Confidence: 0.25})
	}

	if g.Score() != 10 {
		t.Errorf("score = %d, want 10", g.Score())
	}
	select {
	case next := <-redrawn:
		if next.BlankIndex < 1 {
			t.Errorf("new blank index = %d, want ≥ 1", next.BlankIndex)
		}
	default:
		t.Error("no new word drawn after success")
	}
}

func TestFillBlank_RevealSettleGuardsReentry(t *testing.T) {
	g, err := New(Config{
		Mode:         ModeFillBlank,
		Words:        StaticWords{{Text: "cat"}, {Text: "dog"}},
		RevealSettle: 60 * time.Millisecond,
		Rand:         rand.New(rand.NewSource(5)),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	target := g.Target()
	for i := 0; i < 4; i++ {
		g.HandlePrediction(Prediction{Label: target.Label, Confidence: 0.9})
	}
	if g.Score() != 10 {
		t.Fatalf("score = %d, want 10", g.Score())
	}

	// While the reveal settles, further predictions are swallowed and no
	// second success can fire.
	for i := 0; i < 8; i++ {
		g.HandlePrediction(Prediction{Label: g.Target().Label, Confidence: 0.9})
	}
	if g.Score() != 10 {
		t.Errorf("score = %d during settle, want 10", g.Score())
	}
	if got := g.Target(); got != target {
		t.Errorf("target changed during settle: %+v", got)
	}

	// After the settle a fresh word is active and scorable again.
	time.Sleep(100 * time.Millisecond)
	next := g.Target()
	for i := 0; i < 4; i++ {
		g.HandlePrediction(Prediction{Label: next.Label, Confidence: 0.9})
	}
	if g.Score() != 20 {
		t.Errorf("score = %d after settle, want 20", g.Score())
	}
}

func TestFillBlank_Unavailable(t *testing.T) {
	cases := []struct {
		name  string
		words WordSource
	}{
		{"nil source", nil},
		{"empty list", StaticWords{}},
		{"only single letters", StaticWords{{Text: "a"}, {Text: "b"}}},
		{"source error", failingWords{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(Config{Mode: ModeFillBlank, Words: tc.words})
			if !errors.Is(err, ErrWordListUnavailable) {
				t.Errorf("expected ErrWordListUnavailable, got %v", err)
			}
		})
	}
}

type failingWords struct{}

func (failingWords) Words() ([]Word, error) {
	return nil, errors.New("backend down")
}

func TestAboveBelow_TargetsAlwaysInBounds(t *testing.T) {
	classSets := []struct {
		name    string
		classes []string
		numeric bool
		maxStep int
	}{
		{"numeric", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, true, 5},
		{"alphabetic", []string{"A", "B", "C", "D", "E"}, false, 3},
		{"minimal", []string{"A", "B"}, false, 3},
	}

	for _, cs := range classSets {
		t.Run(cs.name, func(t *testing.T) {
			index := make(map[string]int, len(cs.classes))
			for i, c := range cs.classes {
				index[c] = i
			}

			g, err := New(Config{
				Mode:    ModeAboveBelow,
				Classes: cs.classes,
				Numeric: cs.numeric,
				Rand:    rand.New(rand.NewSource(42)),
			})
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			for i := 0; i < 10000; i++ {
				target := g.Target()

				ti, ok := index[target.Label]
				if !ok {
					t.Fatalf("draw %d: label %q not in class set", i, target.Label)
				}
				bi, ok := index[target.Base]
				if !ok {
					t.Fatalf("draw %d: base %q not in class set", i, target.Base)
				}
				if target.Direction != 1 && target.Direction != -1 {
					t.Fatalf("draw %d: direction = %d", i, target.Direction)
				}
				if target.Steps < 1 || target.Steps > cs.maxStep {
					t.Fatalf("draw %d: steps = %d, want 1..%d", i, target.Steps, cs.maxStep)
				}
				if bi+target.Direction*target.Steps != ti {
					t.Fatalf("draw %d: base %d %+d*%d does not land on target %d",
						i, bi, target.Direction, target.Steps, ti)
				}

				// Force a redraw by completing the target.
				for j := 0; j < DefaultHoldFrames; j++ {
					g.HandlePrediction(Prediction{Label: target.Label, Confidence: 0.9})
				}
			}
		})
	}
}

func TestAboveBelow_RejectsTinyClassSet(t *testing.T) {
	_, err := New(Config{Mode: ModeAboveBelow, Classes: []string{"A"}})
	if !errors.Is(err, ErrClassSetTooSmall) {
		t.Errorf("expected ErrClassSetTooSmall, got %v", err)
	}
}

func TestTimedTarget_RejectsEmptyClassSet(t *testing.T) {
	_, err := New(Config{Mode: ModeTimedTarget})
	if !errors.Is(err, ErrClassSetTooSmall) {
		t.Errorf("expected ErrClassSetTooSmall, got %v", err)
	}
}

func TestNew_UnknownMode(t *testing.T) {
	_, err := New(Config{Mode: Mode(99), Classes: []string{"A", "B"}})
	if err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSkip_BudgetAndNoScoring(t *testing.T) {
	g := newTimedGame(t, []string{"A", "B", "C", "D"}, 11)

	// Build up a partial hold, then skip: the counter must reset.
	target := g.Target().Label
	g.HandlePrediction(Prediction{Label: target, Confidence: 0.9})
	g.HandlePrediction(Prediction{Label: target, Confidence: 0.9})
	g.HandlePrediction(Prediction{Label: target, Confidence: 0.9})

	if !g.Skip() {
		t.Fatal("first skip rejected")
	}
	if g.Score() != 0 {
		t.Errorf("score = %d, skips must not award points", g.Score())
	}

	// One match on the new target is not enough after the reset.
	g.HandlePrediction(Prediction{Label: g.Target().Label, Confidence: 0.9})
	if g.Score() != 0 {
		t.Errorf("score = %d, hold counter survived the skip", g.Score())
	}

	if !g.Skip() {
		t.Fatal("second skip rejected")
	}
	if g.Skip() {
		t.Error("third skip allowed past the budget of 2")
	}
	if g.SkipsLeft() != 0 {
		t.Errorf("skips left = %d, want 0", g.SkipsLeft())
	}
}
