package controllers

import (
	"net/http"

	"github.com/campuspool/campuspool-backend/api/responses"
	"github.com/campuspool/campuspool-backend/internal/dashboard"
	"github.com/campuspool/campuspool-backend/pkg/logger"
)

// DashboardStats reports active listing counts and the user total.
func DashboardStats(svc *dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
