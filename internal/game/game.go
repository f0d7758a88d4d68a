// Package game implements the round state machine that consumes classifier
// predictions and drives target generation, debounced success detection, and
// scoring for the three play modes.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Mode selects the play mode for a round. Modes are mutually exclusive per
// game instance.
type Mode int

const (
	// ModeTimedTarget presents a single class to sign, redrawn on success.
	ModeTimedTarget Mode = iota
	// ModeFillBlank presents a word with one letter blanked out.
	ModeFillBlank
	// ModeAboveBelow presents a base class plus an offset the player must
	// resolve against the ordered class list.
	ModeAboveBelow
)

func (m Mode) String() string {
	switch m {
	case ModeTimedTarget:
		return "timed_target"
	case ModeFillBlank:
		return "fill_blank"
	case ModeAboveBelow:
		return "above_below"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Errors reported at construction time.
var (
	// ErrWordListUnavailable means the word source failed or returned no
	// usable words, so fill-the-blank mode cannot run.
	ErrWordListUnavailable = errors.New("word list unavailable")
	// ErrClassSetTooSmall means the class set cannot produce a valid target
	// for the requested mode.
	ErrClassSetTooSmall = errors.New("class set too small")
)

// Scoring and debounce parameters.
const (
	// PointsPerSuccess is awarded for each completed target.
	PointsPerSuccess = 10
	// DefaultHoldFrames is the number of consecutive qualifying predictions
	// required before a target counts as signed.
	DefaultHoldFrames = 4
	// DefaultSkipBudget is the number of free target skips per round.
	DefaultSkipBudget = 2
	// TimedTargetConfidence is the minimum confidence in timed-target mode.
	TimedTargetConfidence = 0.30
	// DefaultConfidence is the minimum confidence in the other modes.
	DefaultConfidence = 0.20

	// maxDrawAttempts bounds above/below rejection sampling.
	maxDrawAttempts = 256
)

// Target is the current challenge presented to the player.
type Target struct {
	// Label is the class the player must sign to complete the target.
	Label string `json:"label"`

	// Word, Emoji, and BlankIndex are set in fill-the-blank mode.
	Word       string `json:"word,omitempty"`
	Emoji      string `json:"emoji,omitempty"`
	BlankIndex int    `json:"blank_index,omitempty"`

	// Base, Direction, and Steps are set in above/below mode. Direction is
	// +1 toward higher class indices and -1 toward lower.
	Base      string `json:"base,omitempty"`
	Direction int    `json:"direction,omitempty"`
	Steps     int    `json:"steps,omitempty"`
}

// Config holds the round parameters fixed at construction.
type Config struct {
	Mode    Mode
	Classes []string
	// Numeric widens the above/below step range from 1..3 to 1..5.
	Numeric bool
	// Words supplies the word list for fill-the-blank mode.
	Words WordSource
	// HoldFrames overrides DefaultHoldFrames when positive.
	HoldFrames int
	// SkipBudget overrides DefaultSkipBudget when positive. Zero means the
	// default; negative means no skips.
	SkipBudget int
	// RevealSettle is how long a fill-the-blank reveal is displayed before
	// the next word is drawn. Zero or negative settles synchronously.
	RevealSettle time.Duration
	// Rand is the randomness source for target generation. Nil means a
	// time-seeded source.
	Rand *rand.Rand
}

// Prediction is the slice of classifier output the game consumes.
type Prediction struct {
	Label      string
	Confidence float64
}

// Game is one round's state machine. All methods are safe for concurrent
// use; callbacks are invoked with the game lock held, so they must not call
// back into the Game.
type Game struct {
	config     Config
	holdFrames int
	threshold  float64

	mu        sync.Mutex
	target    Target
	words     []Word
	score     int
	holdCount int
	skipsLeft int
	revealing bool

	onScore  func(score int)
	onTarget func(target Target)
}

// New validates the configuration and creates a Game with its first target
// drawn. Fill-the-blank requires a word source with at least one word of two
// or more letters; above/below requires at least two classes.
func New(config Config) (*Game, error) {
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if config.HoldFrames <= 0 {
		config.HoldFrames = DefaultHoldFrames
	}
	skips := config.SkipBudget
	if skips == 0 {
		skips = DefaultSkipBudget
	} else if skips < 0 {
		skips = 0
	}

	g := &Game{
		config:     config,
		holdFrames: config.HoldFrames,
		threshold:  DefaultConfidence,
		skipsLeft:  skips,
	}

	switch config.Mode {
	case ModeTimedTarget:
		g.threshold = TimedTargetConfidence
		if len(config.Classes) == 0 {
			return nil, fmt.Errorf("%w: timed-target needs at least 1 class", ErrClassSetTooSmall)
		}
	case ModeFillBlank:
		if config.Words == nil {
			return nil, ErrWordListUnavailable
		}
		words, err := config.Words.Words()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWordListUnavailable, err)
		}
		for _, w := range words {
			if len(w.Text) >= 2 {
				g.words = append(g.words, w)
			}
		}
		if len(g.words) == 0 {
			return nil, ErrWordListUnavailable
		}
	case ModeAboveBelow:
		if len(config.Classes) < 2 {
			return nil, fmt.Errorf("%w: above/below needs at least 2 classes", ErrClassSetTooSmall)
		}
	default:
		return nil, fmt.Errorf("unknown game mode %d", int(config.Mode))
	}

	if err := g.drawTarget(); err != nil {
		return nil, err
	}
	return g, nil
}

// OnScore registers the callback fired with the new total after each award.
func (g *Game) OnScore(fn func(score int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onScore = fn
}

// OnTarget registers the callback fired with each newly drawn target.
func (g *Game) OnTarget(fn func(target Target)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onTarget = fn
}

// Target returns the current target.
func (g *Game) Target() Target {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target
}

// Score returns the current score.
func (g *Game) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

// SkipsLeft returns the remaining skip budget.
func (g *Game) SkipsLeft() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.skipsLeft
}

// HandlePrediction feeds one classifier prediction into the hold counter. A
// prediction qualifies when its label matches the current target and its
// confidence meets the mode's threshold; anything else resets the counter.
// Reaching the hold count awards points and draws the next target.
func (g *Game) HandlePrediction(p Prediction) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// A reveal in progress swallows predictions so a second success cannot
	// fire before the next word is drawn.
	if g.revealing {
		return
	}

	if p.Label != g.target.Label || p.Confidence < g.threshold {
		g.holdCount = 0
		return
	}

	g.holdCount++
	if g.holdCount < g.holdFrames {
		return
	}

	g.holdCount = 0
	g.score += PointsPerSuccess
	if g.onScore != nil {
		g.onScore(g.score)
	}

	if g.config.Mode == ModeFillBlank && g.config.RevealSettle > 0 {
		g.revealing = true
		time.AfterFunc(g.config.RevealSettle, g.finishReveal)
		return
	}
	g.advanceTarget()
}

// finishReveal ends the reveal settle period and draws the next word.
func (g *Game) finishReveal() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.revealing {
		return
	}
	g.revealing = false
	g.advanceTarget()
}

// Skip discards the current target without awarding points. It returns false
// when the skip budget is exhausted or a reveal is settling.
func (g *Game) Skip() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.skipsLeft <= 0 || g.revealing {
		return false
	}
	g.skipsLeft--
	g.holdCount = 0
	g.advanceTarget()
	return true
}

// advanceTarget draws the next target and notifies the target callback.
// Draw errors cannot occur after construction has validated the class set,
// so the previous target is simply kept if one does.
func (g *Game) advanceTarget() {
	prev := g.target
	if err := g.drawTarget(); err != nil {
		g.target = prev
		return
	}
	if g.onTarget != nil {
		g.onTarget(g.target)
	}
}

// drawTarget generates a fresh target for the configured mode. The caller
// holds the lock.
func (g *Game) drawTarget() error {
	switch g.config.Mode {
	case ModeTimedTarget:
		g.target = Target{Label: g.config.Classes[g.config.Rand.Intn(len(g.config.Classes))]}
		return nil

	case ModeFillBlank:
		word := g.words[g.config.Rand.Intn(len(g.words))]
		// The first letter is never blanked.
		blank := 1 + g.config.Rand.Intn(len(word.Text)-1)
		g.target = Target{
			Label:      strings.ToUpper(string(word.Text[blank])),
			Word:       word.Text,
			Emoji:      word.Emoji,
			BlankIndex: blank,
		}
		return nil

	case ModeAboveBelow:
		maxStep := 3
		if g.config.Numeric {
			maxStep = 5
		}
		n := len(g.config.Classes)
		for attempt := 0; attempt < maxDrawAttempts; attempt++ {
			base := g.config.Rand.Intn(n)
			dir := 1
			if g.config.Rand.Intn(2) == 0 {
				dir = -1
			}
			step := 1 + g.config.Rand.Intn(maxStep)

			idx := base + dir*step
			if idx < 0 || idx >= n {
				continue
			}
			g.target = Target{
				Label:     g.config.Classes[idx],
				Base:      g.config.Classes[base],
				Direction: dir,
				Steps:     step,
			}
			return nil
		}
		return fmt.Errorf("%w: no valid above/below target for %d classes", ErrClassSetTooSmall, n)
	}
	return fmt.Errorf("unknown game mode %d", int(g.config.Mode))
}
