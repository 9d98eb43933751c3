package conversation

import (
	"sync"

	"github.com/splitchain/splitbot/internal/model"
)

// State is the position of a session inside the split dialogue.
type State int

const (
	StateAwaitingImage State = iota
	StateConfirmReceipt
	StateChooseSplit
	StateAwaitWallet
	StateConfirmWallet
	StateAwaitParticipants
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingImage:
		return "awaiting_image"
	case StateConfirmReceipt:
		return "confirm_receipt"
	case StateChooseSplit:
		return "choose_split"
	case StateAwaitWallet:
		return "await_wallet"
	case StateConfirmWallet:
		return "confirm_wallet"
	case StateAwaitParticipants:
		return "await_participants"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Key identifies a session: one per active (user, chat) pair.
type Key struct {
	UserID int64
	ChatID int64
}

// Session is the mutable dialogue state for one key. Access is serialized by
// mu: a user double-tapping a button must never interleave transitions.
type Session struct {
	mu sync.Mutex

	State         State
	Receipt       *model.ReceiptRecord
	WalletAddress string
	Participants  int
}

// reset returns the session to a blank AWAITING_IMAGE. Caller holds mu.
func (s *Session) reset() {
	s.State = StateAwaitingImage
	s.Receipt = nil
	s.WalletAddress = ""
	s.Participants = 0
}

// Store holds the sessions of all active users. Cross-session operations need
// no coordination beyond the map lock.
type Store struct {
	mu       sync.Mutex
	sessions map[Key]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[Key]*Session)}
}

// Get returns the session for key, creating a blank one on first contact.
func (s *Store) Get(key Key) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &Session{State: StateAwaitingImage}
		s.sessions[key] = sess
	}
	return sess
}
