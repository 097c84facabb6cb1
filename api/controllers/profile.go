package controllers

import (
	"net/http"

	"github.com/campuspool/campuspool-backend/api/middleware"
	"github.com/campuspool/campuspool-backend/api/responses"
	"github.com/campuspool/campuspool-backend/internal/users"
	pkgerrors "github.com/campuspool/campuspool-backend/pkg/errors"
	"github.com/campuspool/campuspool-backend/pkg/logger"
	"github.com/google/uuid"
)

// ProfileMe returns the authenticated caller's profile.
func ProfileMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := middleware.UserIDFromContext(r.Context())
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
			return
		}

		profile, err := svc.Me(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
