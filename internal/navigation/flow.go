package navigation

// Screen is the top-level screen of the work flow.
type Screen string

const (
	ScreenList    Screen = "list"
	ScreenEditor  Screen = "editor"
	ScreenHistory Screen = "history"
)

// Route is the current screen. WorkID and FileName are set for the editor
// and history screens only.
type Route struct {
	Screen   Screen `json:"screen"`
	WorkID   string `json:"work_id,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

// Panel is a side panel of the editor. The zero value means no panel.
type Panel string

const (
	PanelNone     Panel = ""
	PanelExplorer Panel = "explorer"
	PanelBranch   Panel = "branch"
	PanelGraph    Panel = "graph"
	PanelChanges  Panel = "changes"
)

// FlowState is the route plus the active side panel.
type FlowState struct {
	Route Route `json:"route"`
	Panel Panel `json:"panel,omitempty"`
}

// NewFlowState starts at the work list.
func NewFlowState() FlowState {
	return FlowState{Route: Route{Screen: ScreenList}}
}

// FlowAction is one of the Open*/Back*/TogglePanel/ClosePanel actions.
type FlowAction interface {
	flowAction()
}

type (
	// OpenEditor opens a file of a work from any screen.
	OpenEditor struct {
		WorkID   string
		FileName string
	}
	// BackToList returns to the work list.
	BackToList struct{}
	// OpenHistory moves from the editor to the history of the same file.
	OpenHistory struct{}
	// BackToEditor moves from history back to the editor of the same file.
	BackToEditor struct{}
	// TogglePanel opens Panel in the editor, or closes it if already open.
	TogglePanel struct {
		Panel Panel
	}
	// ClosePanel closes the open panel.
	ClosePanel struct{}
)

func (OpenEditor) flowAction()   {}
func (BackToList) flowAction()   {}
func (OpenHistory) flowAction()  {}
func (BackToEditor) flowAction() {}
func (TogglePanel) flowAction()  {}
func (ClosePanel) flowAction()   {}

// ReduceFlow applies action to state. Actions that are not valid from the
// current screen return state unchanged.
func ReduceFlow(state FlowState, action FlowAction) FlowState {
	switch a := action.(type) {
	case OpenEditor:
		return FlowState{Route: Route{Screen: ScreenEditor, WorkID: a.WorkID, FileName: a.FileName}}

	case BackToList:
		return NewFlowState()

	case OpenHistory:
		if state.Route.Screen != ScreenEditor {
			return state
		}
		r := state.Route
		r.Screen = ScreenHistory
		return FlowState{Route: r}

	case BackToEditor:
		if state.Route.Screen != ScreenHistory {
			return state
		}
		r := state.Route
		r.Screen = ScreenEditor
		return FlowState{Route: r}

	case TogglePanel:
		if state.Route.Screen != ScreenEditor {
			return state
		}
		next := a.Panel
		if state.Panel == a.Panel {
			next = PanelNone
		}
		return FlowState{Route: state.Route, Panel: next}

	case ClosePanel:
		if state.Panel == PanelNone {
			return state
		}
		return FlowState{Route: state.Route}

	default:
		return state
	}
}
