package domain

import "fmt"

// WorkspaceState is the persisted form of every session plus the per-agent
// pointers. NextSession survives a discard so session ids are never reissued.
type WorkspaceState struct {
	NextSession uint64                `json:"next_session"`
	Sessions    []SessionState        `json:"sessions"`
	Agents      map[string]AgentState `json:"agents"`
}

// AgentState tracks which sessions one user agent can see and which one it
// is working in.
type AgentState struct {
	Current  SessionID   `json:"current,omitempty"`
	Sessions []SessionID `json:"sessions"`
}

func (a *AgentState) Visible(id SessionID) bool {
	for _, sid := range a.Sessions {
		if sid == id {
			return true
		}
	}
	return false
}

// Validate checks that every session id is a well-formed S<n> below
// NextSession and appears once, so a restored workspace never reissues an id
// that is already in use.
func (ws *WorkspaceState) Validate() error {
	seen := make(map[SessionID]struct{}, len(ws.Sessions))
	for _, st := range ws.Sessions {
		seq, ok := parseSeq("S", string(st.ID))
		if !ok || seq >= ws.NextSession {
			return fmt.Errorf("%w: session id %q", ErrInvalidState, st.ID)
		}
		if _, dup := seen[st.ID]; dup {
			return fmt.Errorf("%w: duplicate session %q", ErrInvalidState, st.ID)
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}
