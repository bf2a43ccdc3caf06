package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"babsy-voucher-platform/internal/domain"
	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/repository"
	"babsy-voucher-platform/internal/usecase"
)

type voucherCreateRequest struct {
	PartnerID          string     `json:"partnerId"`
	OwnerID            string     `json:"ownerId,omitempty"` // employees only
	Description        string     `json:"description,omitempty"`
	Value              *float64   `json:"value,omitempty"`
	DiscountPercentage *int       `json:"discountPercentage,omitempty"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
}

type redeemByCodeRequest struct {
	Code string `json:"code"`
}

type validateRequest struct {
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) issueVoucher(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req voucherCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		http.Error(w, "expiresAt must be in the future", http.StatusBadRequest)
		return
	}

	// Members issue to themselves; employees may issue on behalf of a member.
	ownerID := id.UserID
	if id.UserType == model.UserTypeEmployee && req.OwnerID != "" {
		ownerID = req.OwnerID
	}

	v, err := s.voucherUC.Issue(r.Context(), usecase.IssueParams{
		OwnerID:            ownerID,
		PartnerID:          req.PartnerID,
		Description:        req.Description,
		Value:              req.Value,
		DiscountPercentage: req.DiscountPercentage,
		ExpiresAt:          req.ExpiresAt,
	})
	if err != nil {
		s.writeDomainError(w, err, "Failed to issue voucher")
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) listVouchers(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var filter repository.VoucherFilter
	if raw := r.URL.Query().Get("is_redeemed"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "is_redeemed must be a boolean", http.StatusBadRequest)
			return
		}
		filter.IsRedeemed = &b
	}

	vouchers, err := s.voucherUC.ListByOwner(r.Context(), id.UserID, filter)
	if err != nil {
		s.writeDomainError(w, err, "Failed to list vouchers")
		return
	}

	response := struct {
		Data []*model.Voucher `json:"data"`
	}{Data: vouchers}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) getVoucher(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	// Members may only see their own vouchers.
	var requestingOwnerID *string
	if id.UserType == model.UserTypeMember {
		requestingOwnerID = &id.UserID
	}

	v, err := s.voucherUC.Lookup(r.Context(), chi.URLParam(r, "id"), requestingOwnerID)
	if err != nil {
		s.writeDomainError(w, err, "Failed to get voucher")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) redeemVoucher(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	v, err := s.voucherUC.Redeem(r.Context(), chi.URLParam(r, "id"), id.UserID, id.PartnerID)
	if err != nil {
		s.writeDomainError(w, err, "Failed to redeem voucher")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) redeemByCode(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req redeemByCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	v, err := s.voucherUC.RedeemByCode(r.Context(), req.Code, id.UserID, id.PartnerID)
	if err != nil {
		s.writeDomainError(w, err, "Failed to redeem voucher")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) validateQR(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Payload) == 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.voucherUC.ValidateQR(r.Context(), req.Payload, id.PartnerID)
	if err != nil {
		s.writeDomainError(w, err, "Failed to validate payload")
		return
	}

	response := struct {
		Valid   bool           `json:"valid"`
		Reason  string         `json:"reason,omitempty"`
		Voucher *model.Voucher `json:"voucher,omitempty"`
	}{
		Valid:   result.Valid,
		Reason:  result.Reason,
		Voucher: result.Voucher,
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) statsOverview(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	// Partners see their own numbers; employees see the global picture.
	var partnerID *string
	if id.UserType == model.UserTypePartner {
		partnerID = &id.PartnerID
	}

	stats, err := s.statsUC.Overview(r.Context(), partnerID)
	if err != nil {
		s.writeDomainError(w, err, "Failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) listPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := s.partnerUC.ListActive(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "Failed to list partners")
		return
	}

	response := struct {
		Data []*model.Partner `json:"data"`
	}{Data: partners}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) getPartner(w http.ResponseWriter, r *http.Request) {
	p, err := s.partnerUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "Failed to get partner")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type partnerUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Address     *string `json:"address,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

func (s *Server) updatePartner(w http.ResponseWriter, r *http.Request) {
	var req partnerUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := s.partnerUC.Update(r.Context(), chi.URLParam(r, "id"), usecase.UpdatePartnerParams{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Address:     req.Address,
		IsActive:    req.IsActive,
	})
	if err != nil {
		s.writeDomainError(w, err, "Failed to update partner")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) partnerStats(w http.ResponseWriter, r *http.Request) {
	partnerID := chi.URLParam(r, "id")

	// 404 for unknown partners instead of an all-zero report.
	if _, err := s.partnerUC.Get(r.Context(), partnerID); err != nil {
		s.writeDomainError(w, err, "Failed to get partner")
		return
	}

	stats, err := s.statsUC.Overview(r.Context(), &partnerID)
	if err != nil {
		s.writeDomainError(w, err, "Failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps domain sentinels onto HTTP statuses; anything
// unrecognized is a 500 with a generic message.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPartnerNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrWrongPartner):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, domain.ErrAlreadyRedeemed):
		http.Error(w, "Voucher already redeemed", http.StatusConflict)
	case errors.Is(err, domain.ErrVoucherExpired):
		http.Error(w, "Voucher expired", http.StatusConflict)
	case errors.Is(err, domain.ErrPartnerInactive):
		http.Error(w, "Partner is not active", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrMalformedPayload),
		errors.Is(err, domain.ErrInvalidPayloadType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error().Err(err).Msg(fallback)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}
