package listings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuspool/campuspool-backend/pkg/config"
	"github.com/campuspool/campuspool-backend/pkg/db/models"
	"github.com/campuspool/campuspool-backend/pkg/enums"
	pkgerrors "github.com/campuspool/campuspool-backend/pkg/errors"
	"github.com/campuspool/campuspool-backend/pkg/logger"
	"github.com/campuspool/campuspool-backend/pkg/metrics"
	"github.com/campuspool/campuspool-backend/pkg/types"
	"github.com/google/uuid"
)

// Service drives the engine through the read-compute-conditional-write loop
// and owns every cross-listing side effect.
type Service interface {
	CreateRide(ctx context.Context, actor Actor, req CreateRideRequest) (*DisplayListing, error)
	CreateFood(ctx context.Context, actor Actor, req CreateFoodRequest) (*DisplayListing, error)
	Feed(ctx context.Context, callerID uuid.UUID, kind enums.ListingKind) ([]DisplayListing, error)
	Join(ctx context.Context, actor Actor, kind enums.ListingKind, listingID uuid.UUID, req JoinRequest) (*DisplayListing, error)
	LeaveAsMember(ctx context.Context, callerID uuid.UUID, kind enums.ListingKind, listingID uuid.UUID) (*DisplayListing, error)
	LeaveAsOwner(ctx context.Context, callerID uuid.UUID, kind enums.ListingKind, listingID uuid.UUID) (*DisplayListing, error)
	Delete(ctx context.Context, callerID uuid.UUID, kind enums.ListingKind, listingID uuid.UUID) error
}

// ServiceParams bundles the dependencies required to build the listings service.
type ServiceParams struct {
	Repo    Repository
	Metrics *metrics.ListingMetrics
	Logger  *logger.Logger
	Config  config.ListingsConfig
}

type service struct {
	repo    Repository
	metrics *metrics.ListingMetrics
	logg    *logger.Logger
	retries int
	grace   time.Duration
	now     func() time.Time
}

// NewService constructs the listings service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository is required")
	}
	retries := params.Config.ConflictRetries
	if retries < 1 {
		retries = 1
	}
	grace := params.Config.RideGraceWindow
	if grace <= 0 {
		grace = time.Hour
	}
	return &service{
		repo:    params.Repo,
		metrics: params.Metrics,
		logg:    params.Logger,
		retries: retries,
		grace:   grace,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) CreateRide(ctx context.Context, actor Actor, req CreateRideRequest) (*DisplayListing, error) {
	return s.create(ctx, actor, req.toModel(actor), nil)
}

func (s *service) CreateFood(ctx context.Context, actor Actor, req CreateFoodRequest) (*DisplayListing, error) {
	owner := types.Contribution{UserID: actor.ID, Name: actor.Name, Verified: actor.Verified, Items: req.Items}
	return s.create(ctx, actor, req.toModel(actor), &owner)
}

func (s *service) create(ctx context.Context, actor Actor, l *models.Listing, ownerContribution *types.Contribution) (*DisplayListing, error) {
	kind := l.Kind.String()
	if err := ValidateNew(l, s.now(), s.grace); err != nil {
		s.count(kind, "create", err)
		return nil, err
	}
	NormalizeNew(l)
	if ownerContribution != nil {
		l.Contributions = l.Contributions.Upsert(*ownerContribution)
	}

	if err := s.repo.Create(ctx, l); err != nil {
		s.count(kind, "create", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create listing")
	}

	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"listing_id":   l.ID.String(),
			"listing_kind": kind,
		})
		s.logg.Info(lctx, "listing.created")
	}
	s.count(kind, "create", nil)

	view := project(l, actor.ID)
	return &view, nil
}

func (s *service) Feed(ctx context.Context, callerID uuid.UUID, kind enums.ListingKind) ([]DisplayListing, error) {
	rows, err := s.repo.ListByKind(ctx, kind)
	if err != nil {
		s.count(kind.String(), "feed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list listings")
	}

	out := make([]DisplayListing, 0, len(rows))
	for view := range Project(rows, s.now(), callerID, s.grace) {
		out = append(out, view)
	}
	s.count(kind.String(), "feed", nil)
	return out, nil
}

func (s *service) Join(ctx context.Context, actor Actor, kind enums.ListingKind, listingID uuid.UUID, req JoinRequest) (*DisplayListing, error) {
	target, err := s.load(ctx, kind, listingID)
	if err != nil {
		s.count(kind.String(), "join", err)
		return nil, err
	}

	items := req.Items
	prior, err := s.repo.FindByOwner(ctx, actor.ID, kind, listingID)
	if err != nil {
		s.count(kind.String(), "join", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check owned listings")
	}
	if prior != nil {
		merge := kind == enums.ListingKindFood && SameRestaurant(prior, target)
		if !req.Confirm {
			details := OwnedListingDetails{ListingID: prior.ID, Restaurant: prior.Restaurant, Merge: merge}
			err := pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrOwnedListingExists, "caller already owns a listing of this kind").
				WithDetails(details)
			s.count(kind.String(), "join", err)
			return nil, err
		}

		if merge {
			// Carry the caller's order over from the listing being replaced.
			if entry, ok := prior.Contributions.ByUser(actor.ID); ok {
				items = entry.Items
			}
		}

		if err := s.repo.Delete(ctx, prior.ID); err != nil {
			s.count(kind.String(), "join", err)
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove prior listing")
		}
		if s.logg != nil {
			lctx := s.logg.WithFields(ctx, map[string]any{
				"listing_id":       prior.ID.String(),
				"listing_kind":     kind.String(),
				"replaced_by_join": listingID.String(),
				"merged":           merge,
			})
			s.logg.Info(lctx, "listing.replaced")
		}
	}

	member := types.Participant{UserID: actor.ID, Name: actor.Name, Verified: actor.Verified, JoinedAt: s.now()}
	var contribution *types.Contribution
	if kind == enums.ListingKindFood {
		contribution = &types.Contribution{UserID: actor.ID, Name: actor.Name, Verified: actor.Verified, Items: items}
	}

	updated, err := s.mutate(ctx, kind, listingID, "join", func(l *models.Listing) error {
		return Join(l, member, contribution)
	})
	if err != nil {
		s.count(kind.String(), "join", err)
		return nil, err
	}

	s.log(ctx, updated, "listing.joined")
	s.count(kind.String(), "join", nil)
	view := project(updated, actor.ID)
	return &view, nil
}

func (s *service) LeaveAsMember(ctx context.Context, callerID uuid.UUID, kind enums.ListingKind, listingID uuid.UUID) (*DisplayListing, error) {
	updated, err := s.mutate(ctx, kind, listingID, "leave", func(l *models.Listing) error {
		return LeaveAsMember(l, callerID)
	})
	if err != nil {
		s.count(kind.String(), "leave", err)
		return nil, err
	}

	s.log(ctx, updated, "listing.left")
	s.count(kind.String(), "leave", nil)
	view := project(updated, callerID)
	return &view, nil
}

func (s *service) LeaveAsOwner(ctx context.Context, callerID uuid.UUID, kind enums.ListingKind, listingID uuid.UUID) (*DisplayListing, error) {
	updated, err := s.mutate(ctx, kind, listingID, "leave_owner", func(l *models.Listing) error {
		return PromoteOwner(l, callerID)
	})
	if err != nil {
		s.count(kind.String(), "leave_owner", err)
		return nil, err
	}

	s.log(ctx, updated, "listing.owner_promoted")
	s.count(kind.String(), "leave_owner", nil)
	view := project(updated, callerID)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, callerID uuid.UUID, kind enums.ListingKind, listingID uuid.UUID) error {
	l, err := s.load(ctx, kind, listingID)
	if err != nil {
		s.count(kind.String(), "delete", err)
		return err
	}
	if err := CanDelete(l, callerID); err != nil {
		s.count(kind.String(), "delete", err)
		return err
	}
	if err := s.repo.Delete(ctx, listingID); err != nil {
		if isRecordNotFound(err) {
			notFound := pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
			s.count(kind.String(), "delete", notFound)
			return notFound
		}
		wrapped := pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete listing")
		s.count(kind.String(), "delete", wrapped)
		return wrapped
	}

	s.log(ctx, l, "listing.deleted")
	s.count(kind.String(), "delete", nil)
	return nil
}

// load fetches the listing and hides rows of the wrong kind, mirroring the
// per-kind route layout.
func (s *service) load(ctx context.Context, kind enums.ListingKind, listingID uuid.UUID) (*models.Listing, error) {
	l, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load listing")
	}
	if l.Kind != kind {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return l, nil
}

// mutate runs the read-compute-conditional-write loop. A stale version is
// retried with a fresh read; after the bounded attempts the conflict
// surfaces to the caller.
func (s *service) mutate(ctx context.Context, kind enums.ListingKind, listingID uuid.UUID, op string, fn func(l *models.Listing) error) (*models.Listing, error) {
	for attempt := 0; attempt < s.retries; attempt++ {
		l, err := s.load(ctx, kind, listingID)
		if err != nil {
			return nil, err
		}

		if err := fn(l); err != nil {
			return nil, err
		}

		err = s.repo.ConditionalUpdate(ctx, l)
		if err == nil {
			return l, nil
		}
		if errors.Is(err, ErrVersionConflict) {
			s.metrics.IncVersionConflict(kind.String(), op)
			continue
		}
		if isRecordNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update listing")
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, ErrVersionConflict, "retries exhausted")
}

func (s *service) log(ctx context.Context, l *models.Listing, msg string) {
	if s.logg == nil || l == nil {
		return
	}
	lctx := s.logg.WithFields(ctx, map[string]any{
		"listing_id":   l.ID.String(),
		"listing_kind": l.Kind.String(),
		"version":      l.Version,
	})
	s.logg.Info(lctx, msg)
}

func (s *service) count(kind, op string, err error) {
	s.metrics.IncOperation(kind, op, outcomeFor(err))
}

func outcomeFor(err error) string {
	if err == nil {
		return "ok"
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return "error"
	}
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeStateConflict:
		return "rejected"
	case pkgerrors.CodeConflict:
		return "conflict"
	default:
		return "error"
	}
}
