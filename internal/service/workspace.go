package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/achworks/achd/internal/domain"
	"github.com/achworks/achd/internal/metrics"
	"github.com/achworks/achd/internal/store"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// sessionEntry serializes every operation on one session, snapshots included.
type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

// WorkspaceService is the session store keyed by session id. It owns the
// session id counter and the per-agent pointers, and writes the whole
// workspace through its store after every successful mutation.
//
// Lock order: s.mu before any sessionEntry.mu.
type WorkspaceService struct {
	mu          sync.RWMutex
	sessions    map[domain.SessionID]*sessionEntry
	agents      map[string]*domain.AgentState
	nextSession uint64

	persistMu sync.Mutex
	dirty     atomic.Bool
	store     domain.WorkspaceStore
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewWorkspaceService(st domain.WorkspaceStore, m *metrics.Metrics, logger *zap.Logger) *WorkspaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceService{
		sessions: make(map[domain.SessionID]*sessionEntry),
		agents:   make(map[string]*domain.AgentState),
		store:    st,
		metrics:  m,
		logger:   logger,
	}
}

// Load replaces the in-memory workspace with the stored one. A store with
// nothing saved yields an empty workspace.
func (s *WorkspaceService) Load(ctx context.Context) error {
	blob, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Info("no saved workspace, starting empty")
			return nil
		}
		return fmt.Errorf("load workspace: %w", err)
	}

	var ws domain.WorkspaceState
	if err := json.Unmarshal(blob, &ws); err != nil {
		return fmt.Errorf("decode workspace: %w", err)
	}
	if err := ws.Validate(); err != nil {
		return fmt.Errorf("restore workspace: %w", err)
	}

	sessions := make(map[domain.SessionID]*sessionEntry, len(ws.Sessions))
	for _, st := range ws.Sessions {
		sess, err := domain.RestoreSession(st)
		if err != nil {
			return fmt.Errorf("restore session %s: %w", st.ID, err)
		}
		sessions[sess.ID()] = &sessionEntry{session: sess}
	}

	agents := make(map[string]*domain.AgentState, len(ws.Agents))
	for id, a := range ws.Agents {
		a := a
		visible := a.Sessions[:0]
		for _, sid := range a.Sessions {
			if _, ok := sessions[sid]; ok {
				visible = append(visible, sid)
			}
		}
		a.Sessions = visible
		if !a.Visible(a.Current) {
			a.Current = ""
		}
		agents[id] = &a
	}

	s.mu.Lock()
	s.sessions = sessions
	s.agents = agents
	s.nextSession = ws.NextSession
	s.mu.Unlock()

	s.metrics.SetSessions(len(sessions))
	s.logger.Info("workspace loaded",
		zap.Int("sessions", len(sessions)),
		zap.Int("agents", len(agents)),
	)
	return nil
}

// AgentSessions is what one agent sees of the workspace.
type AgentSessions struct {
	Current  domain.SessionID   `json:"current"`
	Sessions []domain.SessionID `json:"sessions"`
}

func (s *WorkspaceService) ListSessions(agentID string) AgentSessions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := AgentSessions{Sessions: []domain.SessionID{}}
	if a, ok := s.agents[agentID]; ok {
		out.Current = a.Current
		out.Sessions = append(out.Sessions, a.Sessions...)
	}
	return out
}

// CreateSession starts an empty session and makes it the agent's current one.
func (s *WorkspaceService) CreateSession(ctx context.Context, agentID string) (*SessionView, error) {
	s.mu.Lock()
	sess := domain.NewSession(s.allocateSessionIDLocked())
	s.sessions[sess.ID()] = &sessionEntry{session: sess}
	s.attachLocked(agentID, sess.ID())
	n := len(s.sessions)
	view := newSessionView(sess)
	s.mu.Unlock()

	s.metrics.ObserveOperation("create_session", nil)
	s.metrics.SetSessions(n)
	s.logger.Info("session created", zap.String("session_id", string(sess.ID())), zap.String("agent_id", agentID))
	s.persist(ctx)
	return view, nil
}

// SwitchSession makes sid the agent's current session.
func (s *WorkspaceService) SwitchSession(ctx context.Context, agentID string, sid domain.SessionID) error {
	s.mu.Lock()
	a, ok := s.agents[agentID]
	if !ok || !a.Visible(sid) {
		s.mu.Unlock()
		s.metrics.ObserveOperation("switch_session", ErrSessionNotFound)
		return ErrSessionNotFound
	}
	a.Current = sid
	s.mu.Unlock()

	s.metrics.ObserveOperation("switch_session", nil)
	s.persist(ctx)
	return nil
}

// DuplicateSession snapshots sid into a new session that becomes current.
// The workspace lock is held from the visibility check to the insert so a
// concurrent DiscardAll either runs first (the source is gone) or removes the
// copy as well.
func (s *WorkspaceService) DuplicateSession(ctx context.Context, agentID string, sid domain.SessionID) (*SessionView, error) {
	s.mu.Lock()
	src, err := s.lookupLocked(agentID, sid)
	if err != nil {
		s.mu.Unlock()
		s.metrics.ObserveOperation("duplicate_session", err)
		return nil, err
	}

	newID := s.allocateSessionIDLocked()
	src.mu.Lock()
	cp := src.session.Snapshot(newID)
	src.mu.Unlock()

	s.sessions[newID] = &sessionEntry{session: cp}
	s.attachLocked(agentID, newID)
	n := len(s.sessions)
	view := newSessionView(cp)
	s.mu.Unlock()

	s.metrics.ObserveOperation("duplicate_session", nil)
	s.metrics.SetSessions(n)
	s.logger.Info("session duplicated",
		zap.String("source_id", string(sid)),
		zap.String("session_id", string(newID)),
		zap.String("agent_id", agentID),
	)
	s.persist(ctx)
	return view, nil
}

// DiscardAll drops every session and agent pointer. The session id counter
// is kept so discarded ids are never handed out again.
func (s *WorkspaceService) DiscardAll(ctx context.Context) error {
	s.mu.Lock()
	discarded := len(s.sessions)
	s.sessions = make(map[domain.SessionID]*sessionEntry)
	s.agents = make(map[string]*domain.AgentState)
	s.mu.Unlock()

	s.metrics.ObserveOperation("discard_all", nil)
	s.metrics.SetSessions(0)
	s.logger.Info("workspace discarded", zap.Int("sessions", discarded))
	s.persist(ctx)
	return nil
}

// State returns the full view of a session: ids, content, matrix and scores.
func (s *WorkspaceService) State(agentID string, sid domain.SessionID) (*SessionView, error) {
	var view *SessionView
	err := s.read("get_state", agentID, sid, func(sess *domain.Session) error {
		view = newSessionView(sess)
		return nil
	})
	return view, err
}

func (s *WorkspaceService) AddHypothesis(ctx context.Context, agentID string, sid domain.SessionID, content string) (domain.HypothesisID, *SessionView, error) {
	var id domain.HypothesisID
	view, err := s.mutate(ctx, "add_hypothesis", agentID, sid, func(sess *domain.Session) error {
		id = sess.AddHypothesis(content)
		return nil
	})
	return id, view, err
}

func (s *WorkspaceService) RenameHypothesis(ctx context.Context, agentID string, sid domain.SessionID, hid domain.HypothesisID, content string) (*SessionView, error) {
	return s.mutate(ctx, "rename_hypothesis", agentID, sid, func(sess *domain.Session) error {
		return sess.RenameHypothesis(hid, content)
	})
}

func (s *WorkspaceService) RemoveHypothesis(ctx context.Context, agentID string, sid domain.SessionID, hid domain.HypothesisID) (*SessionView, error) {
	return s.mutate(ctx, "remove_hypothesis", agentID, sid, func(sess *domain.Session) error {
		return sess.RemoveHypothesis(hid)
	})
}

// EvidenceInput describes new evidence. Nil weights default to MEDIUM.
type EvidenceInput struct {
	Content     string
	Credibility *domain.Weight
	Relevance   *domain.Weight
}

func (s *WorkspaceService) AddEvidence(ctx context.Context, agentID string, sid domain.SessionID, in EvidenceInput) (domain.EvidenceID, *SessionView, error) {
	var opts []domain.EvidenceOption
	if in.Credibility != nil {
		opts = append(opts, domain.WithCredibility(*in.Credibility))
	}
	if in.Relevance != nil {
		opts = append(opts, domain.WithRelevance(*in.Relevance))
	}

	var id domain.EvidenceID
	view, err := s.mutate(ctx, "add_evidence", agentID, sid, func(sess *domain.Session) error {
		var err error
		id, err = sess.AddEvidence(in.Content, opts...)
		return err
	})
	return id, view, err
}

// EvidenceUpdate carries the fields to change; nil fields are left alone.
type EvidenceUpdate struct {
	Content     *string
	Credibility *domain.Weight
	Relevance   *domain.Weight
}

// UpdateEvidence applies all requested changes or none of them.
func (s *WorkspaceService) UpdateEvidence(ctx context.Context, agentID string, sid domain.SessionID, eid domain.EvidenceID, up EvidenceUpdate) (*SessionView, error) {
	return s.mutate(ctx, "update_evidence", agentID, sid, func(sess *domain.Session) error {
		if up.Content == nil && up.Credibility == nil && up.Relevance == nil {
			return fmt.Errorf("%w: no fields to update", ErrInvalidInput)
		}
		if _, err := sess.Evidence(eid); err != nil {
			return err
		}
		for _, w := range []*domain.Weight{up.Credibility, up.Relevance} {
			if w != nil && !w.Valid() {
				return fmt.Errorf("%w: %v", domain.ErrInvalidWeight, float64(*w))
			}
		}

		if up.Content != nil {
			if err := sess.RenameEvidence(eid, *up.Content); err != nil {
				return err
			}
		}
		if up.Credibility != nil {
			if err := sess.SetEvidenceCredibility(eid, *up.Credibility); err != nil {
				return err
			}
		}
		if up.Relevance != nil {
			if err := sess.SetEvidenceRelevance(eid, *up.Relevance); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *WorkspaceService) RemoveEvidence(ctx context.Context, agentID string, sid domain.SessionID, eid domain.EvidenceID) (*SessionView, error) {
	return s.mutate(ctx, "remove_evidence", agentID, sid, func(sess *domain.Session) error {
		return sess.RemoveEvidence(eid)
	})
}

func (s *WorkspaceService) Rate(ctx context.Context, agentID string, sid domain.SessionID, hid domain.HypothesisID, eid domain.EvidenceID, level domain.Consistency) (*SessionView, error) {
	return s.mutate(ctx, "rate", agentID, sid, func(sess *domain.Session) error {
		return sess.Rate(hid, eid, level)
	})
}

func (s *WorkspaceService) Score(agentID string, sid domain.SessionID, hid domain.HypothesisID) (float64, error) {
	var score float64
	err := s.read("score", agentID, sid, func(sess *domain.Session) error {
		var err error
		score, err = sess.Score(hid)
		return err
	})
	return score, err
}

// Scores ranks the session's hypotheses, lowest (best supported) first.
func (s *WorkspaceService) Scores(agentID string, sid domain.SessionID) ([]domain.HypothesisScore, error) {
	var scores []domain.HypothesisScore
	err := s.read("scores", agentID, sid, func(sess *domain.Session) error {
		scores = sess.Scores()
		return nil
	})
	return scores, err
}

func (s *WorkspaceService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *WorkspaceService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *WorkspaceService) lookup(agentID string, sid domain.SessionID) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(agentID, sid)
}

func (s *WorkspaceService) lookupLocked(agentID string, sid domain.SessionID) (*sessionEntry, error) {
	a, ok := s.agents[agentID]
	if !ok || !a.Visible(sid) {
		return nil, ErrSessionNotFound
	}
	e, ok := s.sessions[sid]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func (s *WorkspaceService) read(op, agentID string, sid domain.SessionID, fn func(*domain.Session) error) error {
	e, err := s.lookup(agentID, sid)
	if err != nil {
		s.metrics.ObserveOperation(op, err)
		return err
	}

	e.mu.Lock()
	err = fn(e.session)
	e.mu.Unlock()

	s.metrics.ObserveOperation(op, err)
	return err
}

// mutate runs fn under the session lock and, on success, persists the
// workspace. fn must leave the session untouched when it returns an error.
func (s *WorkspaceService) mutate(ctx context.Context, op, agentID string, sid domain.SessionID, fn func(*domain.Session) error) (*SessionView, error) {
	e, err := s.lookup(agentID, sid)
	if err != nil {
		s.metrics.ObserveOperation(op, err)
		return nil, err
	}

	e.mu.Lock()
	err = fn(e.session)
	var view *SessionView
	if err == nil {
		view = newSessionView(e.session)
	}
	e.mu.Unlock()

	s.metrics.ObserveOperation(op, err)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)
	return view, nil
}

func (s *WorkspaceService) allocateSessionIDLocked() domain.SessionID {
	id := domain.SessionID(fmt.Sprintf("S%d", s.nextSession))
	s.nextSession++
	return id
}

func (s *WorkspaceService) attachLocked(agentID string, sid domain.SessionID) {
	a, ok := s.agents[agentID]
	if !ok {
		a = &domain.AgentState{}
		s.agents[agentID] = a
	}
	a.Sessions = append(a.Sessions, sid)
	a.Current = sid
}

// Snapshot captures the whole workspace. Each session is copied under its
// own lock.
func (s *WorkspaceService) Snapshot() domain.WorkspaceState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws := domain.WorkspaceState{
		NextSession: s.nextSession,
		Sessions:    make([]domain.SessionState, 0, len(s.sessions)),
		Agents:      make(map[string]domain.AgentState, len(s.agents)),
	}
	for _, e := range s.sessions {
		e.mu.Lock()
		ws.Sessions = append(ws.Sessions, e.session.State())
		e.mu.Unlock()
	}
	sortSessionStates(ws.Sessions)
	for id, a := range s.agents {
		ws.Agents[id] = domain.AgentState{
			Current:  a.Current,
			Sessions: append([]domain.SessionID(nil), a.Sessions...),
		}
	}
	return ws
}

// persist writes the workspace. Durability is best effort: a failed write is
// logged, the in-memory change stands and the workspace is marked dirty until
// a later write succeeds.
func (s *WorkspaceService) persist(ctx context.Context) {
	if err := s.Flush(ctx); err != nil {
		s.logger.Error("failed to persist workspace", zap.Error(err))
	}
}

// Flush writes the whole workspace to the store now.
func (s *WorkspaceService) Flush(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	start := time.Now()
	blob, err := json.Marshal(s.Snapshot())
	if err != nil {
		s.dirty.Store(true)
		return fmt.Errorf("encode workspace: %w", err)
	}
	if err := s.store.Save(ctx, blob); err != nil {
		s.dirty.Store(true)
		return fmt.Errorf("save workspace: %w", err)
	}
	s.dirty.Store(false)
	s.metrics.ObservePersist(time.Since(start))
	return nil
}

// Dirty reports whether the last write to the store failed.
func (s *WorkspaceService) Dirty() bool {
	return s.dirty.Load()
}
