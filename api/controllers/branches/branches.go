package branches

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/horizoncoop/coopadmin-backend/api/middleware"
	"github.com/horizoncoop/coopadmin-backend/api/responses"
	"github.com/horizoncoop/coopadmin-backend/api/validators"
	internalbranches "github.com/horizoncoop/coopadmin-backend/internal/branches"
	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
	"github.com/horizoncoop/coopadmin-backend/pkg/logger"
)

type updateSettingsRequest struct {
	AllowUserInput *bool   `json:"allow_user_input"`
	Prefix         *string `json:"prefix" validate:"omitempty,max=16"`
	Padding        *int    `json:"padding" validate:"omitempty,min=0,max=12"`
	Current        *int64  `json:"current" validate:"omitempty,min=0"`
}

func List(svc internalbranches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branches service unavailable"))
			return
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

func Detail(svc internalbranches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branches service unavailable"))
			return
		}

		branchID, err := parseBranchID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branch, err := svc.Get(r.Context(), branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, branch)
	}
}

// GetSettings returns the branch's official receipt numbering rules.
func GetSettings(svc internalbranches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branches service unavailable"))
			return
		}

		branchID, err := parseBranchID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setting, err := svc.GetSettings(r.Context(), branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, setting)
	}
}

// UpdateSettings upserts the branch's official receipt numbering rules.
func UpdateSettings(svc internalbranches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branches service unavailable"))
			return
		}

		branchID, err := parseBranchID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff identity missing"))
			return
		}
		role := enums.StaffRole(middleware.RoleFromContext(r.Context()))

		var req updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setting, err := svc.UpdateSettings(r.Context(), internalbranches.UpdateSettingsInput{
			ActorUserID:    userID,
			ActorRole:      role,
			BranchID:       branchID,
			AllowUserInput: req.AllowUserInput,
			Prefix:         req.Prefix,
			Padding:        req.Padding,
			Current:        req.Current,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, setting)
	}
}

func parseBranchID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "branchId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id is required")
	}
	branchID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid branch id")
	}
	return branchID, nil
}
