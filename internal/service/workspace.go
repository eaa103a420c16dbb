package service

import (
	"sync"

	"github.com/google/uuid"
)

// WorkspaceService keeps the interactive state of every session in process,
// keyed by session id.
type WorkspaceService struct {
	mu     sync.Mutex
	spaces map[string]*Workspace
}

func NewWorkspaceService() *WorkspaceService {
	return &WorkspaceService{spaces: make(map[string]*Workspace)}
}

func (w *WorkspaceService) For(sessionID string) *Workspace {
	w.mu.Lock()
	defer w.mu.Unlock()

	ws, ok := w.spaces[sessionID]
	if !ok {
		ws = &Workspace{
			editors: make(map[string]*Editor),
			runners: make(map[string]*QuizRunner),
		}
		w.spaces[sessionID] = ws
	}
	return ws
}

// IDs lists the sessions that currently hold a workspace.
func (w *WorkspaceService) IDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]string, 0, len(w.spaces))
	for id := range w.spaces {
		ids = append(ids, id)
	}
	return ids
}

func (w *WorkspaceService) Drop(sessionID string) {
	w.mu.Lock()
	ws, ok := w.spaces[sessionID]
	delete(w.spaces, sessionID)
	w.mu.Unlock()

	if ok {
		ws.close()
	}
}

// Workspace holds one session's open editors, quiz runs, mentee view and chat.
type Workspace struct {
	mu      sync.Mutex
	editors map[string]*Editor
	runners map[string]*QuizRunner
	mentees *MenteeAssignment
	chats   []*Conversation
}

func (ws *Workspace) AddEditor(e *Editor) string {
	handle := uuid.NewString()
	ws.mu.Lock()
	ws.editors[handle] = e
	ws.mu.Unlock()
	return handle
}

func (ws *Workspace) Editor(handle string) (*Editor, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	e, ok := ws.editors[handle]
	if !ok {
		return nil, ErrHandleNotFound
	}
	return e, nil
}

func (ws *Workspace) CloseEditor(handle string) {
	ws.mu.Lock()
	delete(ws.editors, handle)
	ws.mu.Unlock()
}

func (ws *Workspace) AddRunner(r *QuizRunner) string {
	handle := uuid.NewString()
	ws.mu.Lock()
	ws.runners[handle] = r
	ws.mu.Unlock()
	return handle
}

func (ws *Workspace) Runner(handle string) (*QuizRunner, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	r, ok := ws.runners[handle]
	if !ok {
		return nil, ErrHandleNotFound
	}
	return r, nil
}

func (ws *Workspace) CloseRunner(handle string) {
	ws.mu.Lock()
	delete(ws.runners, handle)
	ws.mu.Unlock()
}

// Mentees returns the session's mentee view, creating it with create on first use.
func (ws *Workspace) Mentees(create func() *MenteeAssignment) *MenteeAssignment {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.mentees == nil {
		ws.mentees = create()
	}
	return ws.mentees
}

func (ws *Workspace) TrackChat(c *Conversation) {
	ws.mu.Lock()
	ws.chats = append(ws.chats, c)
	ws.mu.Unlock()
}

func (ws *Workspace) ReleaseChat(c *Conversation) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for i, other := range ws.chats {
		if other == c {
			ws.chats = append(ws.chats[:i], ws.chats[i+1:]...)
			return
		}
	}
}

func (ws *Workspace) close() {
	ws.mu.Lock()
	chats := ws.chats
	ws.chats = nil
	ws.mu.Unlock()

	for _, c := range chats {
		c.Close()
	}
}
