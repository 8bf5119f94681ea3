package mirror

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/starford/quire/internal/navigation"
)

// StatusProvider reports the sync account status from the availability of
// the mirror directory.
type StatusProvider struct {
	root string
}

// NewStatusProvider returns a provider for root. An empty root means the
// mirror is not configured.
func NewStatusProvider(root string) *StatusProvider {
	return &StatusProvider{root: root}
}

// CurrentStatus maps the mirror directory state to an account status:
// not configured is restricted, missing is no account, permission errors are
// temporarily unavailable and anything else unexpected cannot be determined.
func (p *StatusProvider) CurrentStatus(ctx context.Context) (navigation.AccountStatus, error) {
	if err := ctx.Err(); err != nil {
		return navigation.AccountCanNotDetermine, err
	}
	if p.root == "" {
		return navigation.AccountRestricted, nil
	}

	info, err := os.Stat(p.root)
	switch {
	case err == nil && !info.IsDir():
		return navigation.AccountCanNotDetermine, nil
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return navigation.AccountNoAccount, nil
	case errors.Is(err, fs.ErrPermission):
		return navigation.AccountTemporarilyUnavailable, nil
	default:
		return navigation.AccountCanNotDetermine, nil
	}

	f, err := os.Open(p.root)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return navigation.AccountTemporarilyUnavailable, nil
		}
		return navigation.AccountCanNotDetermine, nil
	}
	f.Close()
	return navigation.AccountAvailable, nil
}
