package core

const (
	PanelNone    Panel = "none"
	PanelManual  Panel = "manual"
	PanelVoice   Panel = "voice"
	PanelReceipt Panel = "receipt"
)

const (
	AuthSignIn AuthMode = "sign_in"
	AuthSignUp AuthMode = "sign_up"
)

type (
	Panel    string
	AuthMode string

	// ViewState selects which entry panel is visible on the dashboard and
	// which credential form the auth surface shows. At most one panel is
	// active at a time; activating one deactivates any other. The zero
	// value is not ready for use; construct with NewViewState.
	ViewState struct {
		activePanel Panel
		authMode    AuthMode
	}
)

func (p Panel) Valid() bool {
	switch p {
	case PanelNone, PanelManual, PanelVoice, PanelReceipt:
		return true
	}
	return false
}

// NewViewState returns a view state with no panel active and the given
// initial auth mode.
func NewViewState(mode AuthMode) *ViewState {
	if mode != AuthSignUp {
		mode = AuthSignIn
	}
	return &ViewState{activePanel: PanelNone, authMode: mode}
}

// Activate makes the given panel the only active one. Activating
// PanelNone or an unknown panel is equivalent to Deactivate.
func (v *ViewState) Activate(p Panel) {
	if !p.Valid() {
		p = PanelNone
	}
	v.activePanel = p
}

// Deactivate resets the active panel to none. Entry flows call this on
// completion or cancel so forms never stack.
func (v *ViewState) Deactivate() {
	v.activePanel = PanelNone
}

// ActivePanel reports which panel is currently visible.
func (v *ViewState) ActivePanel() Panel {
	return v.activePanel
}

// ToggleAuthMode flips between sign-in and sign-up.
func (v *ViewState) ToggleAuthMode() {
	if v.authMode == AuthSignIn {
		v.authMode = AuthSignUp
	} else {
		v.authMode = AuthSignIn
	}
}

// AuthMode reports which credential form the auth surface renders.
func (v *ViewState) AuthMode() AuthMode {
	return v.authMode
}
