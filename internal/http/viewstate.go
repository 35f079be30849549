package http

import (
	"sync"

	"vibeledger/internal/core"
)

// panelRegistry holds each session's view state, keyed by session token.
// Only requests carrying that token can mutate the entry, so one tab
// opening a panel never touches another account's screen.
type panelRegistry struct {
	mu     sync.Mutex
	states map[string]*core.ViewState
}

func newPanelRegistry() *panelRegistry {
	return &panelRegistry{states: make(map[string]*core.ViewState)}
}

// get returns the session's view state, creating it on first sight.
func (p *panelRegistry) get(token string) *core.ViewState {
	p.mu.Lock()
	defer p.mu.Unlock()
	vs, ok := p.states[token]
	if !ok {
		vs = core.NewViewState(core.AuthSignIn)
		p.states[token] = vs
	}
	return vs
}

// drop forgets a session's state, used on sign-out.
func (p *panelRegistry) drop(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.states, token)
}
