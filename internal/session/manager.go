package session

import (
	"sync"
	"time"

	"github.com/ashabalin/brief-refiner/internal/entity"
)

const DefaultMaxHistory = 20

// Manager keeps per-user interview sessions in memory. All methods are
// safe for concurrent use from update handlers.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[int64]*entity.BriefSession
	histories  map[int64][]entity.ChatMessage
	maxHistory int
}

func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{
		sessions:   make(map[int64]*entity.BriefSession),
		histories:  make(map[int64][]entity.ChatMessage),
		maxHistory: maxHistory,
	}
}

// Start opens a fresh collecting session, replacing any previous one.
func (m *Manager) Start(userID int64) *entity.BriefSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	s := &entity.BriefSession{
		UserID:    userID,
		Status:    entity.BriefStatusCollecting,
		Data:      entity.NewBriefData(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sessions[userID] = s
	m.histories[userID] = nil
	return s
}

// Get returns the user's session, or nil when none was started.
func (m *Manager) Get(userID int64) *entity.BriefSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[userID]
}

// Active returns the session only while it is collecting input.
func (m *Manager) Active(userID int64) (*entity.BriefSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok || s.Status != entity.BriefStatusCollecting {
		return nil, entity.ErrSessionNotActive
	}
	return s, nil
}

// Cancel drops the session and its conversation history.
func (m *Manager) Cancel(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[userID]; !ok {
		return entity.ErrSessionNotActive
	}
	delete(m.sessions, userID)
	delete(m.histories, userID)
	return nil
}

// ApplyInput records raw input and routes it into the focused or given
// field. Returns the updated session.
func (m *Manager) ApplyInput(userID int64, field entity.FieldID, text string) (*entity.BriefSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || s.Status != entity.BriefStatusCollecting {
		return nil, entity.ErrSessionNotActive
	}

	if err := s.Data.ApplyInput(field, text); err != nil {
		return nil, err
	}
	s.UpdatedAt = time.Now()
	return s, nil
}

// RecordRaw keeps the original message text on an active session for
// the final analysis step. Inactive sessions ignore it.
func (m *Manager) RecordRaw(userID int64, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || s.Status != entity.BriefStatusCollecting {
		return
	}
	s.Data.RawMessages = append(s.Data.RawMessages, text)
	s.UpdatedAt = time.Now()
}

// ConsumeFocus returns the focused field and clears it, so one answer
// fills exactly one requested field.
func (m *Manager) ConsumeFocus(userID int64) entity.FieldID {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return ""
	}
	focus := s.Focus
	s.Focus = ""
	return focus
}

// SetFocus moves the interview to the given field.
func (m *Manager) SetFocus(userID int64, field entity.FieldID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || s.Status != entity.BriefStatusCollecting {
		return entity.ErrSessionNotActive
	}
	if !field.Valid() {
		return entity.ErrUnknownField
	}
	s.Focus = field
	s.UpdatedAt = time.Now()
	return nil
}

// MarkReady finalizes the session after the required fields are filled.
// On failure it returns the fields still missing.
func (m *Manager) MarkReady(userID int64) ([]entity.FieldID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || s.Status != entity.BriefStatusCollecting {
		return nil, entity.ErrSessionNotActive
	}

	if missing := s.Data.MissingRequired(); len(missing) > 0 {
		return missing, nil
	}

	s.Status = entity.BriefStatusReady
	s.UpdatedAt = time.Now()
	return nil, nil
}

// RecordMessage appends to the user's conversation history, trimming the
// oldest entries past the cap.
func (m *Manager) RecordMessage(userID int64, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.histories[userID], entity.ChatMessage{Role: role, Content: content})
	if len(history) > m.maxHistory {
		history = history[len(history)-m.maxHistory:]
	}
	m.histories[userID] = history
}

// History returns a copy of the user's conversation history.
func (m *Manager) History(userID int64) []entity.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.histories[userID]
	out := make([]entity.ChatMessage, len(history))
	copy(out, history)
	return out
}
