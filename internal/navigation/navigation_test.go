package navigation

import "testing"

func TestDecideEntryScreen(t *testing.T) {
	tests := []struct {
		userID string
		v      Verification
		want   EntryScreen
	}{
		{"", VerificationUnknown, ScreenSignIn},
		{"", VerificationAuthorized, ScreenSignIn},
		{"", VerificationUnauthorized, ScreenSignIn},
		{"u1", VerificationUnknown, ScreenVerifying},
		{"u1", VerificationAuthorized, ScreenHome},
		{"u1", VerificationUnauthorized, ScreenSignIn},
		{"u1", Verification("bogus"), ScreenSignIn},
	}
	for _, tt := range tests {
		if got := DecideEntryScreen(tt.userID, tt.v); got != tt.want {
			t.Errorf("DecideEntryScreen(%q, %q) = %q, want %q", tt.userID, tt.v, got, tt.want)
		}
	}
}

func TestReduceSession_RevisionGrowsOnEverySuccess(t *testing.T) {
	s := SessionState{}
	s = ReduceSession(s, SignInSucceeded{UserID: "u1"})
	if s.StoredUserID != "u1" || s.Revision != 1 {
		t.Fatalf("after first sign-in = %+v", s)
	}
	first := s.Key()

	s = ReduceSession(s, SignInSucceeded{UserID: "u1"})
	if s.Revision != 2 {
		t.Errorf("revision = %d, want 2", s.Revision)
	}
	if s.Key() == first {
		t.Error("same user signing in again must produce a new verification key")
	}

	s = ReduceSession(s, SignInSucceeded{UserID: "u2"})
	if s.StoredUserID != "u2" || s.Revision != 3 {
		t.Errorf("after switching user = %+v", s)
	}
}

func TestReduceSession_FailureKeepsIdentity(t *testing.T) {
	s := SessionState{StoredUserID: "u1", Revision: 4}
	s = ReduceSession(s, SignInFailed{})
	if s.StoredUserID != "u1" || s.Revision != 4 {
		t.Errorf("state = %+v", s)
	}
	if s.ErrorMessage != SignInFailedMessage {
		t.Errorf("error = %q, want %q", s.ErrorMessage, SignInFailedMessage)
	}

	s = ReduceSession(s, SignInSucceeded{UserID: "u1"})
	if s.ErrorMessage != "" {
		t.Errorf("success must clear error, got %q", s.ErrorMessage)
	}
}

func TestReduceSession_SignOutKeepsRevision(t *testing.T) {
	s := SessionState{StoredUserID: "u1", ErrorMessage: "x", Revision: 7}
	s = ReduceSession(s, SignOut{})
	want := SessionState{Revision: 7}
	if s != want {
		t.Errorf("state = %+v, want %+v", s, want)
	}
}

func TestSyncGateDecisions(t *testing.T) {
	tests := []struct {
		status AccountStatus
		state  SyncState
		dest   Destination
		row    StatusRow
	}{
		{AccountAvailable, SyncEnabled, DestinationHome, StatusRowHidden},
		{AccountNoAccount, SyncRequiresSignIn, DestinationBlocked, StatusRowHidden},
		{AccountRestricted, SyncLocalOnlyBanner, DestinationHome, StatusRowLocalOnly},
		{AccountCanNotDetermine, SyncLocalOnlyBanner, DestinationHome, StatusRowLocalOnly},
		{AccountTemporarilyUnavailable, SyncLocalOnlyBanner, DestinationHome, StatusRowLocalOnly},
	}
	for _, tt := range tests {
		state := DecideSyncState(tt.status)
		if state != tt.state {
			t.Errorf("DecideSyncState(%q) = %q, want %q", tt.status, state, tt.state)
		}
		if got := DecideDestination(state); got != tt.dest {
			t.Errorf("DecideDestination(%q) = %q, want %q", state, got, tt.dest)
		}
		if got := DecideStatusRow(state, false); got != tt.row {
			t.Errorf("DecideStatusRow(%q, false) = %q, want %q", state, got, tt.row)
		}
		if got := DecideStatusRow(state, true); got != StatusRowChecking {
			t.Errorf("DecideStatusRow(%q, true) = %q, want checking", state, got)
		}
	}
}

func TestReduceFlow_Transitions(t *testing.T) {
	s := NewFlowState()

	s = ReduceFlow(s, OpenEditor{WorkID: "w1", FileName: "content.md"})
	want := Route{Screen: ScreenEditor, WorkID: "w1", FileName: "content.md"}
	if s.Route != want || s.Panel != PanelNone {
		t.Fatalf("open editor = %+v", s)
	}

	s = ReduceFlow(s, TogglePanel{Panel: PanelChanges})
	if s.Panel != PanelChanges {
		t.Errorf("panel = %q, want changes", s.Panel)
	}
	s = ReduceFlow(s, TogglePanel{Panel: PanelGraph})
	if s.Panel != PanelGraph {
		t.Errorf("panel = %q, want graph", s.Panel)
	}
	s = ReduceFlow(s, TogglePanel{Panel: PanelGraph})
	if s.Panel != PanelNone {
		t.Errorf("toggling the open panel must close it, got %q", s.Panel)
	}

	s = ReduceFlow(s, TogglePanel{Panel: PanelExplorer})
	s = ReduceFlow(s, OpenHistory{})
	if s.Route.Screen != ScreenHistory || s.Route.WorkID != "w1" || s.Route.FileName != "content.md" {
		t.Errorf("history route = %+v", s.Route)
	}
	if s.Panel != PanelNone {
		t.Errorf("opening history must clear the panel, got %q", s.Panel)
	}

	s = ReduceFlow(s, BackToEditor{})
	if s.Route != want {
		t.Errorf("back to editor = %+v, want %+v", s.Route, want)
	}

	s = ReduceFlow(s, TogglePanel{Panel: PanelBranch})
	s = ReduceFlow(s, ClosePanel{})
	if s.Panel != PanelNone {
		t.Errorf("panel after close = %q", s.Panel)
	}

	s = ReduceFlow(s, BackToList{})
	if s != NewFlowState() {
		t.Errorf("back to list = %+v", s)
	}
}

func TestReduceFlow_IllegalTransitionsAreNoOps(t *testing.T) {
	list := NewFlowState()
	editor := FlowState{Route: Route{Screen: ScreenEditor, WorkID: "w", FileName: "plot.md"}, Panel: PanelBranch}
	history := FlowState{Route: Route{Screen: ScreenHistory, WorkID: "w", FileName: "plot.md"}}

	tests := []struct {
		name   string
		state  FlowState
		action FlowAction
	}{
		{"history from list", list, OpenHistory{}},
		{"back to editor from list", list, BackToEditor{}},
		{"back to editor from editor", editor, BackToEditor{}},
		{"history from history", history, OpenHistory{}},
		{"panel from list", list, TogglePanel{Panel: PanelExplorer}},
		{"panel from history", history, TogglePanel{Panel: PanelExplorer}},
		{"close without panel", history, ClosePanel{}},
	}
	for _, tt := range tests {
		if got := ReduceFlow(tt.state, tt.action); got != tt.state {
			t.Errorf("%s: got %+v, want unchanged %+v", tt.name, got, tt.state)
		}
	}
}

func TestReduceFlow_OpenEditorFromAnywhere(t *testing.T) {
	history := FlowState{Route: Route{Screen: ScreenHistory, WorkID: "a", FileName: "info.md"}}
	got := ReduceFlow(history, OpenEditor{WorkID: "b", FileName: "content.md"})
	want := FlowState{Route: Route{Screen: ScreenEditor, WorkID: "b", FileName: "content.md"}}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
