// Package session holds the per-identity conversation state that makes
// multi-turn disambiguation possible: which flow is waiting for a selection,
// the numbered candidates shown to the user, and the off-topic counter that
// eventually blocks a session.
//
// State is in-memory only and lives for the process lifetime. The store is
// the single source of truth for flow state; every inbound message must be
// interpreted against it before anything else happens.
package session

import (
	"errors"
	"sync"
)

// Action identifies which disambiguation flow is active for a session.
type Action string

const (
	// ActionNone means no flow is pending; the next message goes through
	// the intent resolver as usual.
	ActionNone Action = ""
	// ActionDelete means the session is waiting for the user to pick which
	// candidate record(s) to delete.
	ActionDelete Action = "delete"
	// ActionUpdate means the session is waiting for the user to pick one
	// candidate record to update.
	ActionUpdate Action = "update"
)

// TxType identifies which ledger resource a pending flow concerns.
// The values match the ledger's transaction type discriminator.
type TxType string

const (
	TxExpense TxType = "EXPENSE"
	TxIncome  TxType = "INCOME"
)

// Candidate is one disambiguation option surfaced by the ledger when a
// delete/update request by natural attributes matched more than one record.
//
// Number is the 1-based position shown to the user and is the sole selection
// key for the lifetime of one candidate set. It is opaque: it does not
// necessarily match the underlying record id.
type Candidate struct {
	Number   int    `json:"number"`
	Date     string `json:"date"`
	Amount   int64  `json:"amount"`
	Category string `json:"category,omitempty"`
	Memo     string `json:"memo,omitempty"`
}

// ErrFlowActive is returned by StartFlow when a disambiguation flow is
// already pending. Starting a second flow would make the stored candidate
// numbers ambiguous, so the caller must finish or cancel the active one.
var ErrFlowActive = errors.New("session: a disambiguation flow is already pending")

// Session is the mutable conversation state for one identity.
//
// Invariant: Candidates is non-empty exactly when PendingAction != ActionNone.
// StartFlow and ClearFlow maintain this; nothing else may touch the pending
// fields individually.
type Session struct {
	PendingAction Action
	PendingTxType TxType
	Candidates    []Candidate

	// NaturalCount counts consecutive turns in which no tool was invoked.
	// It resets to zero whenever a tool call executes.
	NaturalCount int

	// Blocked is set after too many consecutive natural turns. Once set,
	// every turn returns a fixed refusal. BlockNotified records whether the
	// user has been told; it lets a session blocked out-of-band still get
	// one onset message before the refusals begin.
	Blocked       bool
	BlockNotified bool
}

// HasPending reports whether a disambiguation flow is waiting for input.
func (s *Session) HasPending() bool {
	return s.PendingAction != ActionNone
}

// StartFlow enters a disambiguation flow with the given candidate set.
// It fails when another flow is already active or the candidate set is empty.
func (s *Session) StartFlow(action Action, tx TxType, candidates []Candidate) error {
	if s.HasPending() {
		return ErrFlowActive
	}
	if action == ActionNone || len(candidates) == 0 {
		return errors.New("session: flow requires an action and at least one candidate")
	}
	s.PendingAction = action
	s.PendingTxType = tx
	s.Candidates = append([]Candidate(nil), candidates...)
	return nil
}

// ClearFlow atomically leaves any pending flow, restoring the idle state.
// Safe to call when no flow is active.
func (s *Session) ClearFlow() {
	s.PendingAction = ActionNone
	s.PendingTxType = ""
	s.Candidates = nil
}

// CandidateByNumber returns the candidate with the given 1-based number.
func (s *Session) CandidateByNumber(n int) (Candidate, bool) {
	for _, c := range s.Candidates {
		if c.Number == n {
			return c, true
		}
	}
	return Candidate{}, false
}

// Store maps identity keys to sessions. A session is created lazily, with
// all fields at their zero values, on first access.
//
// Store is safe for concurrent use. Each Mutate call is one atomic critical
// section, so two overlapping requests for the same identity cannot leave
// the pending fields half-written.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Snapshot returns a copy of the session for key, creating an empty session
// if the identity has never been seen. Callers use the copy for read-only
// decisions; all writes go through Mutate.
func (st *Store) Snapshot(key string) Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return *st.lockedGet(key)
}

// Mutate applies fn to the session for key under the store lock and persists
// the result. fn must not block on I/O.
func (st *Store) Mutate(key string, fn func(*Session)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(st.lockedGet(key))
}

func (st *Store) lockedGet(key string) *Session {
	s, ok := st.sessions[key]
	if !ok {
		s = &Session{}
		st.sessions[key] = s
	}
	return s
}

// Len reports how many identities currently hold a session.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
