package engine

import (
	"math/rand"
	"sync"
	"time"

	"streakpeaked-service/internal/domain"
)

// State is the lifecycle phase of a quiz session.
type State int

const (
	// StateLoading means no active list has been generated yet.
	StateLoading State = iota
	// StateEmpty means the filter matched zero questions; only a filter
	// change (or a restart with a different bank) leaves this state.
	StateEmpty
	// StateInProgress means questions are being served.
	StateInProgress
	// StateTerminal means the run has ended; no further answers are accepted.
	StateTerminal
)

var stateNames = [...]string{"loading", "empty", "inProgress", "terminal"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Callbacks are the engine's presentation hooks. All are optional and are
// invoked outside the session lock, one at a time.
type Callbacks struct {
	// OnBandChange fires when the urgency band (or its blink phase) changes.
	OnBandChange func(band Band, blinkOn bool)
	// OnQuestionAdvance fires after a correct answer settles and the next
	// question becomes current.
	OnQuestionAdvance func(index int)
	// OnTerminal fires exactly once per run, with the finalized score record.
	OnTerminal func(rec domain.ScoreRecord)
}

// Config carries per-session knobs. Zero values are usable: no settle delay,
// time-seeded shuffle, wall clock.
type Config struct {
	UserID string
	Exam   string
	// SettleDelay is how long a submitted answer stays on screen before the
	// session advances or terminates. Zero settles synchronously.
	SettleDelay time.Duration
	// Rand, when set, makes the shuffle order deterministic.
	Rand *rand.Rand
	// Clock, when set, replaces time.Now for elapsed-time measurement.
	Clock func() time.Time
}

// SubmitResult reports the immediate outcome of SubmitAnswer.
type SubmitResult struct {
	// Ignored is true when the submission was dropped: the session was
	// terminal, empty, or still settling a previous answer.
	Ignored bool
	Correct bool
	Streak  int
	// Terminal is true when this submission ends the run once it settles
	// (wrong answer, or correct answer to the last question).
	Terminal bool
}

// TickInfo is the per-second timing snapshot returned by Tick.
type TickInfo struct {
	QuestionSeconds int
	SessionSeconds  int
	Band            Band
	BlinkOn         bool
	State           State
}

// Session is the streak-quiz state machine: it walks one user through a
// shuffled, filtered question list, counting a streak of consecutive correct
// answers, and terminates on the first wrong answer or after the last
// question. One instance per active run; safe for the cooperative
// input-plus-ticker call pattern the transport layer uses.
type Session struct {
	mu        sync.Mutex
	cfg       Config
	callbacks Callbacks
	clock     func() time.Time
	rng       *rand.Rand

	bank   []domain.Question
	filter domain.Filter
	active []domain.Question

	state     State
	index     int
	streak    int
	attempted int
	correct   int
	tally     domain.Tally
	times     []int

	sessionStart  time.Time
	questionStart time.Time

	// settling blocks further submissions between an answer and its
	// advance/terminate transition; generation invalidates pending settles
	// after a restart or filter change.
	settling   bool
	generation int

	lastBand  Band
	lastBlink bool
	bandSeen  bool
}

// NewSession builds a session over bank with the given filter and starts the
// clocks immediately.
func NewSession(bank []domain.Question, filter domain.Filter, cfg Config, cb Callbacks) *Session {
	s := &Session{
		cfg:       cfg,
		callbacks: cb,
		clock:     cfg.Clock,
		rng:       cfg.Rand,
		bank:      bank,
		filter:    filter,
		state:     StateLoading,
		tally:     make(domain.Tally),
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	s.resetLocked()
	return s
}

// resetLocked regenerates the active list and zeroes all run state.
// Callers must hold s.mu (or own the session exclusively, as NewSession does).
func (s *Session) resetLocked() {
	s.generation++
	s.settling = false
	s.active = ActiveList(s.bank, s.filter, s.rng)
	s.index = 0
	s.streak = 0
	s.attempted = 0
	s.correct = 0
	s.tally = make(domain.Tally)
	s.times = nil
	now := s.clock()
	s.sessionStart = now
	s.questionStart = now
	s.bandSeen = false
	if len(s.active) == 0 {
		s.state = StateEmpty
	} else {
		s.state = StateInProgress
	}
}

// Restart reshuffles the active list from the current filter and resets every
// counter and timer. Any pending settle from the previous run is abandoned.
func (s *Session) Restart() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

// SetFilter replaces the filter and performs a full reset, exactly like a
// restart but against the new criteria.
func (s *Session) SetFilter(f domain.Filter) {
	s.mu.Lock()
	s.filter = f
	s.resetLocked()
	s.mu.Unlock()
}

// SubmitAnswer evaluates the selected option against the current question.
// Submissions that arrive while the session is terminal, empty, or still
// settling a previous answer are dropped, not queued.
func (s *Session) SubmitAnswer(selected string) SubmitResult {
	s.mu.Lock()

	if s.state != StateInProgress || s.settling {
		s.mu.Unlock()
		return SubmitResult{Ignored: true}
	}

	q := s.active[s.index]
	elapsed := s.elapsedSecondsLocked(s.questionStart)
	s.times = append(s.times, elapsed)

	correct := IsCorrect(selected, q)
	s.attempted++
	if correct {
		s.correct++
		s.streak++
		s.tally[domain.CategoryKey{Section: q.Section, Level: q.Level}]++
	}

	last := s.index+1 >= len(s.active)
	terminal := !correct || last
	result := SubmitResult{Correct: correct, Streak: s.streak, Terminal: terminal}

	s.settling = true
	gen := s.generation

	if s.cfg.SettleDelay <= 0 {
		after := s.settleLocked(gen, terminal)
		s.mu.Unlock()
		after()
		return result
	}
	s.mu.Unlock()

	time.AfterFunc(s.cfg.SettleDelay, func() {
		s.mu.Lock()
		after := s.settleLocked(gen, terminal)
		s.mu.Unlock()
		after()
	})
	return result
}

// settleLocked finishes a submission: advance to the next question or flip to
// terminal. It returns the callback work to run after the lock is released.
// A settle from a superseded generation (restart or filter change happened in
// between) is a no-op.
func (s *Session) settleLocked(gen int, terminal bool) func() {
	if gen != s.generation || s.state != StateInProgress {
		return func() {}
	}
	s.settling = false

	if terminal {
		s.state = StateTerminal
		// Edge-triggered: the record is built exactly once, here.
		rec := s.buildRecordLocked()
		cb := s.callbacks.OnTerminal
		return func() {
			if cb != nil {
				cb(rec)
			}
		}
	}

	s.index++
	s.questionStart = s.clock()
	s.bandSeen = false
	idx := s.index
	cb := s.callbacks.OnQuestionAdvance
	return func() {
		if cb != nil {
			cb(idx)
		}
	}
}

// Tick samples both elapsed-time counters and the urgency band. The transport
// layer calls it once per second; OnBandChange fires only on band or blink
// transitions. Stale tickers from a replaced run are harmless: Tick reads, it
// never mutates run counters.
func (s *Session) Tick() TickInfo {
	s.mu.Lock()

	info := TickInfo{State: s.state}
	if s.state != StateInProgress {
		s.mu.Unlock()
		return info
	}

	info.QuestionSeconds = s.elapsedSecondsLocked(s.questionStart)
	info.SessionSeconds = s.elapsedSecondsLocked(s.sessionStart)
	info.Band, info.BlinkOn = BandFor(info.QuestionSeconds)

	fire := !s.bandSeen || info.Band != s.lastBand || info.BlinkOn != s.lastBlink
	s.bandSeen = true
	s.lastBand = info.Band
	s.lastBlink = info.BlinkOn
	cb := s.callbacks.OnBandChange
	s.mu.Unlock()

	if fire && cb != nil {
		cb(info.Band, info.BlinkOn)
	}
	return info
}

// Current returns the question being asked, or false when the session is not
// in progress.
func (s *Session) Current() (domain.Question, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return domain.Question{}, 0, false
	}
	return s.active[s.index], s.index, true
}

// State reports the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Len reports the size of the active question list.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Streak reports the current run of consecutive correct answers.
func (s *Session) Streak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

func (s *Session) elapsedSecondsLocked(since time.Time) int {
	return int(s.clock().Sub(since) / time.Second)
}

func (s *Session) buildRecordLocked() domain.ScoreRecord {
	return buildScoreRecord(recordInput{
		userID:       s.cfg.UserID,
		exam:         s.cfg.Exam,
		streak:       s.streak,
		attempted:    s.attempted,
		correct:      s.correct,
		totalSeconds: s.elapsedSecondsLocked(s.sessionStart),
		times:        append([]int(nil), s.times...),
		tally:        s.tally,
		filter:       s.filter,
		now:          s.clock(),
	})
}
