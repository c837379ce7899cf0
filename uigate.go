package novapay

import "sync"

// UIPanel identifies which of the two identity surfaces is active.
type UIPanel string

const (
	PanelSignup UIPanel = "signup"
	PanelLogin  UIPanel = "login"
)

const (
	labelGetStarted = "Get Started"
	labelAccount    = "Account"
)

// UIState is the set of visibility flags the page chrome binds to. It is
// derived entirely from the controller's state on each refresh.
type UIState struct {
	LoggedIn           bool
	ShowAuthCTA        bool
	ShowLogout         bool
	PrimaryActionLabel string
	ActivePanel        UIPanel
	PrefillEmail       string
}

// UIGate projects the controller's auth state onto UIState. It holds no
// state of its own beyond the last projection, and re-projects whenever
// the controller reports a transition or Refresh is called.
type UIGate struct {
	controller *AuthController

	mu    sync.RWMutex
	state UIState
}

func NewUIGate(controller *AuthController) *UIGate {
	gate := &UIGate{controller: controller}
	gate.Refresh()

	controller.OnChange(func(Identity, bool) {
		gate.Refresh()
	})

	return gate
}

// Refresh recomputes the projection from the controller's current state
// and returns it.
func (g *UIGate) Refresh() UIState {
	identity, ok := g.controller.CurrentIdentity()
	state := projectUIState(identity, ok)

	g.mu.Lock()
	g.state = state
	g.mu.Unlock()

	return state
}

// State returns the last computed projection without recomputing it.
func (g *UIGate) State() UIState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func projectUIState(identity Identity, authenticated bool) UIState {
	if !authenticated {
		return UIState{
			ShowAuthCTA:        true,
			PrimaryActionLabel: labelGetStarted,
			ActivePanel:        PanelSignup,
		}
	}

	// A returning authenticated visitor reopens the identity surface on
	// the login panel with their email already filled in.
	return UIState{
		LoggedIn:           true,
		ShowLogout:         true,
		PrimaryActionLabel: labelAccount,
		ActivePanel:        PanelLogin,
		PrefillEmail:       identity.Email(),
	}
}
