// Package navigation holds the pure reducers that decide which view of a
// work a client shows: entry screen, session, sync gate and screen flow.
package navigation

// Verification is the result of checking a stored user identity.
type Verification string

const (
	VerificationUnknown      Verification = "unknown"
	VerificationAuthorized   Verification = "authorized"
	VerificationUnauthorized Verification = "unauthorized"
)

// EntryScreen is the first screen a client should show.
type EntryScreen string

const (
	ScreenSignIn    EntryScreen = "sign_in"
	ScreenVerifying EntryScreen = "verifying"
	ScreenHome      EntryScreen = "home"
)

// DecideEntryScreen picks the entry screen. An empty userID means no stored
// identity. Home is shown only for an authorized identity.
func DecideEntryScreen(userID string, v Verification) EntryScreen {
	if userID == "" {
		return ScreenSignIn
	}
	switch v {
	case VerificationUnknown:
		return ScreenVerifying
	case VerificationAuthorized:
		return ScreenHome
	case VerificationUnauthorized:
		return ScreenSignIn
	default:
		return ScreenSignIn
	}
}
