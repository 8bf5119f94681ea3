package navigation

// AccountStatus is the availability reported by the sync account collaborator.
type AccountStatus string

const (
	AccountAvailable              AccountStatus = "available"
	AccountNoAccount              AccountStatus = "no_account"
	AccountRestricted             AccountStatus = "restricted"
	AccountCanNotDetermine        AccountStatus = "can_not_determine"
	AccountTemporarilyUnavailable AccountStatus = "temporarily_unavailable"
)

// SyncState is how the home screen treats syncing.
type SyncState string

const (
	SyncEnabled         SyncState = "sync_enabled"
	SyncRequiresSignIn  SyncState = "requires_sign_in"
	SyncLocalOnlyBanner SyncState = "local_only_banner"
)

// Destination is where the client goes after the sync gate.
type Destination string

const (
	DestinationHome    Destination = "home"
	DestinationBlocked Destination = "blocked_by_sign_in"
)

// StatusRow is the sync status row shown on the home screen.
type StatusRow string

const (
	StatusRowHidden    StatusRow = "hidden"
	StatusRowChecking  StatusRow = "checking"
	StatusRowLocalOnly StatusRow = "local_only"
)

// DecideSyncState maps an account status to a sync state.
func DecideSyncState(status AccountStatus) SyncState {
	switch status {
	case AccountAvailable:
		return SyncEnabled
	case AccountNoAccount:
		return SyncRequiresSignIn
	case AccountRestricted, AccountCanNotDetermine, AccountTemporarilyUnavailable:
		return SyncLocalOnlyBanner
	default:
		return SyncLocalOnlyBanner
	}
}

// DecideDestination blocks the home screen only when sign-in is required.
func DecideDestination(state SyncState) Destination {
	switch state {
	case SyncEnabled, SyncLocalOnlyBanner:
		return DestinationHome
	case SyncRequiresSignIn:
		return DestinationBlocked
	default:
		return DestinationHome
	}
}

// DecideStatusRow picks the status row. A check in flight overrides the state.
func DecideStatusRow(state SyncState, checking bool) StatusRow {
	if checking {
		return StatusRowChecking
	}
	switch state {
	case SyncEnabled, SyncRequiresSignIn:
		return StatusRowHidden
	case SyncLocalOnlyBanner:
		return StatusRowLocalOnly
	default:
		return StatusRowLocalOnly
	}
}
