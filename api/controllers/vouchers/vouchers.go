package vouchers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/horizoncoop/coopadmin-backend/api/middleware"
	"github.com/horizoncoop/coopadmin-backend/api/responses"
	"github.com/horizoncoop/coopadmin-backend/api/validators"
	internalvouchers "github.com/horizoncoop/coopadmin-backend/internal/vouchers"
	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
	"github.com/horizoncoop/coopadmin-backend/pkg/logger"
	"github.com/horizoncoop/coopadmin-backend/pkg/pagination"
)

type entryRequest struct {
	AccountID *uuid.UUID      `json:"account_id" validate:"required"`
	MemberID  *uuid.UUID      `json:"member_id"`
	LoanID    *uuid.UUID      `json:"loan_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

type createRequest struct {
	Name         string         `json:"name" validate:"required,max=120"`
	CurrencyCode string         `json:"currency_code" validate:"required,len=3"`
	VoucherDate  time.Time      `json:"voucher_date" validate:"required"`
	Reference    string         `json:"reference" validate:"max=120"`
	Description  string         `json:"description" validate:"max=2000"`
	Entries      []entryRequest `json:"entries" validate:"dive"`
	TagIDs       []uuid.UUID    `json:"tag_ids"`
}

type updateHeaderRequest struct {
	LockVersion int          `json:"lock_version" validate:"min=0"`
	Name        *string      `json:"name" validate:"omitempty,max=120"`
	VoucherDate *time.Time   `json:"voucher_date"`
	Reference   *string      `json:"reference" validate:"omitempty,max=120"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	TagIDs      *[]uuid.UUID `json:"tag_ids"`
}

type updateEntriesRequest struct {
	LockVersion int            `json:"lock_version" validate:"min=0"`
	Adds        []entryRequest `json:"adds" validate:"dive"`
	RemoveIDs   []uuid.UUID    `json:"remove_ids"`
}

type printRequest struct {
	LockVersion  int     `json:"lock_version" validate:"min=0"`
	ManualNumber *string `json:"manual_number" validate:"omitempty,max=64"`
}

type transitionRequest struct {
	LockVersion int `json:"lock_version" validate:"min=0"`
}

type replaceTagsRequest struct {
	TagIDs []uuid.UUID `json:"tag_ids"`
}

type listResponse struct {
	Items      []models.JournalVoucher `json:"items"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

// Create opens a draft voucher scoped to the actor's branch.
func Create(svc internalvouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.Create(r.Context(), internalvouchers.CreateInput{
			Actor:        actor,
			Name:         req.Name,
			CurrencyCode: req.CurrencyCode,
			VoucherDate:  req.VoucherDate,
			Reference:    req.Reference,
			Description:  req.Description,
			Entries:      toEntryInputs(req.Entries),
			TagIDs:       req.TagIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, voucher)
	}
}

// List pages the actor's branch vouchers, optionally filtered by status or tag.
func List(svc internalvouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := internalvouchers.ListFilter{
			BranchID: actor.BranchID,
			Page: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseVoucherStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = &status
		}

		tagID, err := validators.ParseQueryUUID(r, "tag_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.TagID = tagID

		items, next, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listResponse{Items: items, NextCursor: next})
	}
}

// Detail returns one voucher with its entries and tags.
func Detail(svc internalvouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		actor, voucherID, err := actorAndVoucherID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.Get(r.Context(), actor, voucherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, voucher)
	}
}

// UpdateHeader patches the descriptive fields of a draft voucher.
func UpdateHeader(svc internalvouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		actor, voucherID, err := actorAndVoucherID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateHeaderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.UpdateHeader(r.Context(), internalvouchers.UpdateHeaderInput{
			Actor:       actor,
			VoucherID:   voucherID,
			LockVersion: req.LockVersion,
			Name:        req.Name,
			VoucherDate: req.VoucherDate,
			Reference:   req.Reference,
			Description: req.Description,
			TagIDs:      req.TagIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, voucher)
	}
}

// UpdateEntries adds and removes entry lines on a draft voucher.
func UpdateEntries(svc internalvouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		actor, voucherID, err := actorAndVoucherID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateEntriesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.UpdateEntries(r.Context(), internalvouchers.UpdateEntriesInput{
			Actor:       actor,
			VoucherID:   voucherID,
			LockVersion: req.LockVersion,
			Adds:        toEntryInputs(req.Adds),
			RemoveIDs:   req.RemoveIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, voucher)
	}
}

// Print validates the draft, assigns its receipt number, and locks the entries.
func Print(svc internalvouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		actor, voucherID, err := actorAndVoucherID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req printRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.Print(r.Context(), internalvouchers.PrintInput{
			Actor:        actor,
			VoucherID:    voucherID,
			LockVersion:  req.LockVersion,
			ManualNumber: req.ManualNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, voucher)
	}
}

// Approve advances a printed voucher to approved.
func Approve(svc internalvouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(svc internalvouchers.Service, r *http.Request, input internalvouchers.TransitionInput) (*models.JournalVoucher, error) {
		return svc.Approve(r.Context(), input)
	})
}

// Release advances an approved voucher to released.
func Release(svc internalvouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(svc internalvouchers.Service, r *http.Request, input internalvouchers.TransitionInput) (*models.JournalVoucher, error) {
		return svc.Release(r.Context(), input)
	})
}

func transition(
	svc internalvouchers.Service,
	logg *logger.Logger,
	apply func(internalvouchers.Service, *http.Request, internalvouchers.TransitionInput) (*models.JournalVoucher, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		actor, voucherID, err := actorAndVoucherID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := apply(svc, r, internalvouchers.TransitionInput{
			Actor:       actor,
			VoucherID:   voucherID,
			LockVersion: req.LockVersion,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, voucher)
	}
}

// ReplaceTags swaps the voucher's tag set.
func ReplaceTags(svc internalvouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vouchers service unavailable"))
			return
		}

		actor, voucherID, err := actorAndVoucherID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req replaceTagsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.ReplaceTags(r.Context(), actor, voucherID, req.TagIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, voucher)
	}
}

func actorFromRequest(r *http.Request) (internalvouchers.Actor, error) {
	ctx := r.Context()

	userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
	if err != nil {
		return internalvouchers.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff identity missing")
	}
	branchID, err := uuid.Parse(middleware.BranchIDFromContext(ctx))
	if err != nil {
		return internalvouchers.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "branch context missing")
	}
	role := enums.StaffRole(middleware.RoleFromContext(ctx))
	if !role.IsValid() {
		return internalvouchers.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff role missing")
	}

	return internalvouchers.Actor{UserID: userID, BranchID: branchID, Role: role}, nil
}

func actorAndVoucherID(r *http.Request) (internalvouchers.Actor, uuid.UUID, error) {
	actor, err := actorFromRequest(r)
	if err != nil {
		return internalvouchers.Actor{}, uuid.Nil, err
	}

	raw := strings.TrimSpace(chi.URLParam(r, "voucherId"))
	if raw == "" {
		return internalvouchers.Actor{}, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher id is required")
	}
	voucherID, err := uuid.Parse(raw)
	if err != nil {
		return internalvouchers.Actor{}, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid voucher id")
	}

	return actor, voucherID, nil
}

func toEntryInputs(reqs []entryRequest) []internalvouchers.EntryInput {
	out := make([]internalvouchers.EntryInput, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, internalvouchers.EntryInput{
			AccountID: req.AccountID,
			MemberID:  req.MemberID,
			LoanID:    req.LoanID,
			Debit:     req.Debit,
			Credit:    req.Credit,
		})
	}
	return out
}
