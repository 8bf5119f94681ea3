package navigation

// SignInFailedMessage is shown after a failed sign-in attempt.
const SignInFailedMessage = "sign-in failed"

// SessionState is the stored identity of the current user. Revision grows
// on every successful sign-in so that signing in again with the same ID
// still triggers a fresh verification.
type SessionState struct {
	StoredUserID string `json:"user_id"`
	ErrorMessage string `json:"error,omitempty"`
	Revision     int    `json:"revision"`
}

// SessionAction is one of SignInSucceeded, SignInFailed or SignOut.
type SessionAction interface {
	sessionAction()
}

// SignInSucceeded records a successful sign-in.
type SignInSucceeded struct {
	UserID string
}

// SignInFailed records a failed sign-in.
type SignInFailed struct{}

// SignOut forgets the stored identity.
type SignOut struct{}

func (SignInSucceeded) sessionAction() {}
func (SignInFailed) sessionAction()    {}
func (SignOut) sessionAction()         {}

// ReduceSession applies action to state and returns the new state.
func ReduceSession(state SessionState, action SessionAction) SessionState {
	switch a := action.(type) {
	case SignInSucceeded:
		return SessionState{
			StoredUserID: a.UserID,
			Revision:     state.Revision + 1,
		}
	case SignInFailed:
		return SessionState{
			StoredUserID: state.StoredUserID,
			ErrorMessage: SignInFailedMessage,
			Revision:     state.Revision,
		}
	case SignOut:
		return SessionState{Revision: state.Revision}
	default:
		return state
	}
}

// VerificationKey identifies one verification request. Two requests with
// equal keys are the same request.
type VerificationKey struct {
	UserID   string
	Revision int
}

// Key returns the verification key of the state.
func (s SessionState) Key() VerificationKey {
	return VerificationKey{UserID: s.StoredUserID, Revision: s.Revision}
}
