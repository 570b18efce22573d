package main

import (
	"math/rand"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Outcome int

const (
	OutcomeCorrect Outcome = iota
	OutcomeWrong
	OutcomeSkipped
)

// ScoreResult is what a scored round resolves to: the outcome plus the
// identity that was being shown, for reply formatting.
type ScoreResult struct {
	Outcome Outcome
	Person  Identity
}

type StatusSnapshot struct {
	Answered    int
	Total       int
	Correct     int
	Wrong       int
	Skipped     int
	CorrectRate float64
}

// Session is one owner's progress through the roster. An identity
// leaves the remaining set exactly once, at scoring time, so
// correct+wrong+skipped+len(remaining) always equals the roster size.
type Session struct {
	mu sync.Mutex

	owner     string
	total     int
	remaining map[string]Identity
	pick      *Identity

	correct int
	wrong   int
	skipped int
}

func newSession(owner string, roster *Roster) *Session {
	remaining := make(map[string]Identity, roster.Len())
	for _, person := range roster.people {
		remaining[person.Name] = person
	}

	return &Session{
		owner:     owner,
		total:     roster.Len(),
		remaining: remaining,
	}
}

func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.remaining) == 0
}

// PickNext selects an identity uniformly at random from the remaining
// set and makes it the current pick. The identity is not removed here;
// removal happens when the pick is scored.
func (s *Session) PickNext() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.remaining) == 0 {
		return Identity{}, errExhausted
	}

	n := rand.Intn(len(s.remaining))
	for _, person := range s.remaining {
		if n == 0 {
			s.pick = &person
			return person, nil
		}
		n--
	}

	// unreachable: n < len(s.remaining)
	return Identity{}, errExhausted
}

// Score consumes the current pick. The literal answer "pass" skips;
// otherwise the answer is title-cased, split into words, and counts as
// correct if any word is a substring of the pick's name. The match is
// deliberately loose (a one-letter word that happens to appear in the
// name scores correct); players rely on it for partial names.
func (s *Session) Score(answer string) (ScoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pick == nil {
		return ScoreResult{}, errNoActivePick
	}

	person := *s.pick
	outcome := OutcomeWrong

	if strings.EqualFold(strings.TrimSpace(answer), "pass") {
		outcome = OutcomeSkipped
		s.skipped++
	} else {
		for _, word := range strings.Fields(cases.Title(language.Und).String(answer)) {
			if strings.Contains(person.Name, word) {
				outcome = OutcomeCorrect
				break
			}
		}

		if outcome == OutcomeCorrect {
			s.correct++
		} else {
			s.wrong++
		}
	}

	delete(s.remaining, person.Name)
	s.pick = nil

	return ScoreResult{Outcome: outcome, Person: person}, nil
}

func (s *Session) Status() StatusSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	rate := 0.0
	if s.total > 0 {
		rate = float64(s.correct) / float64(s.total)
	}

	return StatusSnapshot{
		Answered:    s.total - len(s.remaining),
		Total:       s.total,
		Correct:     s.correct,
		Wrong:       s.wrong,
		Skipped:     s.skipped,
		CorrectRate: rate,
	}
}

type StartResult int

const (
	Started StartResult = iota
	Rejected
)

// Registry maps an owner key (a user id, or a group/room id for shared
// chats) to at most one session. The registry mutex only guards the
// map; each session serializes its own state.
type Registry struct {
	mu       sync.RWMutex
	roster   *Roster
	sessions map[string]*Session
}

func newRegistry(roster *Roster) *Registry {
	return &Registry{
		roster:   roster,
		sessions: make(map[string]*Session),
	}
}

// Get returns the owner's session, or nil if they have never played.
func (r *Registry) Get(owner string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[owner]
}

// Start creates a fresh session for the owner. Without force, an
// unfinished game in progress is left untouched and Rejected is
// returned; a finished (or absent) one is replaced.
func (r *Registry) Start(owner string, force bool) StartResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !force {
		if existing, ok := r.sessions[owner]; ok && !existing.Finished() {
			return Rejected
		}
	}

	r.sessions[owner] = newSession(owner, r.roster)

	return Started
}

// Eligible reports whether the owner has an active, unfinished session.
func (r *Registry) Eligible(owner string) bool {
	s := r.Get(owner)

	return s != nil && !s.Finished()
}

// Remove drops the owner's session, if any. Used when the bot leaves a
// shared chat.
func (r *Registry) Remove(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, owner)
}
