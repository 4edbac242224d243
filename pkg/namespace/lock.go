package namespace

import (
	"context"
	"time"

	"github.com/marmos91/dittodav/internal/logger"
	"github.com/marmos91/dittodav/pkg/repository"
)

// ReadOnlyToken is the lock owner reported to principals that cannot
// write the node: they see a resource locked forever instead of an error.
const ReadOnlyToken = "readonly"

// LockStatus is the outcome of a lock request.
type LockStatus int

const (
	// LockAcquired means the principal now holds (or already held) the lock
	LockAcquired LockStatus = iota

	// LockReadOnly means the principal may not write the node; no lock
	// was taken
	LockReadOnly

	// LockDenied means another principal holds the lock
	LockDenied
)

func (s LockStatus) String() string {
	switch s {
	case LockAcquired:
		return "acquired"
	case LockReadOnly:
		return "read-only"
	case LockDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// LockResult is the tagged result of Lock.
type LockResult struct {
	Status LockStatus

	// Owner is the lock holder for LockAcquired and LockDenied, and
	// ReadOnlyToken for LockReadOnly
	Owner string
}

// Lock acquires the repository lock on ref for the session principal.
//
// Principals without WriteProperties get LockReadOnly and no lock is taken.
// If another principal holds the lock the result is LockDenied with that
// owner.
func (b *Backend) Lock(ctx context.Context, ref repository.Ref) (result LockResult, err error) {
	const op = "Lock"
	defer b.observe(op, time.Now(), &err)

	writable, err := b.session.HasPermission(ctx, ref, repository.PermWriteProperties)
	if err != nil {
		return LockResult{}, wrapError(op, ref.String(), err)
	}
	if !writable {
		logger.Debug("Lock on %s by %s: read-only", ref, b.session.Principal())
		return LockResult{Status: LockReadOnly, Owner: ReadOnlyToken}, nil
	}

	lock, err := b.session.SetLock(ctx, ref)
	if repository.IsCode(err, repository.ErrLocked) {
		owner, ownerErr := b.GetCheckoutUser(ctx, ref)
		if ownerErr != nil {
			return LockResult{}, ownerErr
		}
		return LockResult{Status: LockDenied, Owner: owner}, nil
	}
	if err != nil {
		return LockResult{}, wrapError(op, ref.String(), err)
	}

	logger.Info("Locked %s for %s", ref, lock.Owner)
	return LockResult{Status: LockAcquired, Owner: lock.Owner}, nil
}

// Unlock removes the lock on ref when the session principal owns it. It
// reports false, without side effects, otherwise.
func (b *Backend) Unlock(ctx context.Context, ref repository.Ref) (unlocked bool, err error) {
	const op = "Unlock"
	defer b.observe(op, time.Now(), &err)

	ok, err := b.CanUnlock(ctx, ref)
	if err != nil || !ok {
		return false, err
	}
	if err := b.session.RemoveLock(ctx, ref); err != nil {
		return false, wrapError(op, ref.String(), err)
	}

	logger.Info("Unlocked %s", ref)
	return true, nil
}

// CanUnlock reports whether the session principal owns the lock on ref.
func (b *Backend) CanUnlock(ctx context.Context, ref repository.Ref) (bool, error) {
	principal := b.session.Principal()
	if principal == "" {
		logger.Warn("Unlock check on %s with an empty session principal", ref)
		return false, nil
	}
	owner, err := b.GetCheckoutUser(ctx, ref)
	if err != nil {
		return false, err
	}
	return owner == principal, nil
}

// IsLocked reports whether anyone holds the lock on ref.
func (b *Backend) IsLocked(ctx context.Context, ref repository.Ref) (bool, error) {
	owner, err := b.GetCheckoutUser(ctx, ref)
	return owner != "", err
}

// GetCheckoutUser returns the owner of the lock on ref, or "" when ref is
// unlocked. Lock state is always read from the repository, never cached.
func (b *Backend) GetCheckoutUser(ctx context.Context, ref repository.Ref) (string, error) {
	lock, err := b.session.GetLock(ctx, ref)
	if err != nil {
		return "", wrapError("GetLock", ref.String(), err)
	}
	if lock == nil {
		return "", nil
	}
	return lock.Owner, nil
}
