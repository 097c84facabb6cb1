package listings

import (
	pkgerrors "github.com/campuspool/campuspool-backend/pkg/errors"
)

// Rejection sentinels surfaced by the engine. Callers match them with
// errors.Is; the service wraps them with request-specific details without
// mutating the sentinel itself.
var (
	ErrAlreadyMember      = pkgerrors.New(pkgerrors.CodeStateConflict, "already part of this listing")
	ErrNotAMember         = pkgerrors.New(pkgerrors.CodeStateConflict, "not a member of this listing")
	ErrNotOwner           = pkgerrors.New(pkgerrors.CodeForbidden, "only the listing owner may do this")
	ErrCapacityExceeded   = pkgerrors.New(pkgerrors.CodeStateConflict, "listing is full")
	ErrEmptyOwnerLeave    = pkgerrors.New(pkgerrors.CodeStateConflict, "owner cannot leave a listing with no members")
	ErrNonEmptyListing    = pkgerrors.New(pkgerrors.CodeStateConflict, "listing still has members")
	ErrOwnedListingExists = pkgerrors.New(pkgerrors.CodeStateConflict, "caller already owns a listing of this kind")

	// ErrVersionConflict reports a stale conditional update. The service
	// retries a bounded number of times before letting it surface.
	ErrVersionConflict = pkgerrors.New(pkgerrors.CodeConflict, "listing was modified concurrently")
)
