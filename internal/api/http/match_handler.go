package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/service"
)

const maxBodyBytes = 1 << 20

type MatchHandler struct {
	matchSvc service.MatchService
}

func NewMatchHandler(matchSvc service.MatchService) *MatchHandler {
	return &MatchHandler{matchSvc: matchSvc}
}

type createMatchRequestBody struct {
	BookingID   int64  `json:"bookingId"`
	Description string `json:"description"`
}

type joinMatchRequestBody struct {
	TeamInfo string `json:"teamInfo"`
}

func (h *MatchHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	page, err := pageQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.matchSvc.ListActive(r.Context(), domain.ActiveQuery{
		PageQuery:    page,
		ViewerUserID: viewerFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, "active match requests", result, mapMatchRequest)
}

func (h *MatchHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := h.matchSvc.GetDetail(r.Context(), id, viewerFromContext(r.Context()))
	if errors.Is(err, domain.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "match request detail", mapMatchDetail(detail))
}

func (h *MatchHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	var body createMatchRequestBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.matchSvc.CreateRequest(r.Context(), body.BookingID, userID, body.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "match request created", mapMatchRequest(*req))
}

func (h *MatchHandler) JoinRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body joinMatchRequestBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.matchSvc.JoinRequest(r.Context(), id, userID, body.TeamInfo)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "joined match request", mapParticipant(*p))
}

func (h *MatchHandler) AcceptParticipant(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	id, participantID, err := pathIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	success, err := h.matchSvc.AcceptParticipant(r.Context(), id, participantID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "participant accepted", mapMatchSuccess(success))
}

func (h *MatchHandler) RejectOrWithdraw(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	id, participantID, err := pathIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.matchSvc.RejectOrWithdraw(r.Context(), id, participantID, userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "application updated", nil)
}

func (h *MatchHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.matchSvc.CancelRequest(r.Context(), id, userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "match request cancelled", nil)
}

func (h *MatchHandler) MyHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	page, err := pageQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.matchSvc.GetMyHistory(r.Context(), userID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, "match history", result, mapMatchRequest)
}

func (h *MatchHandler) BookingHasRequest(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "bookingId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	info, err := h.matchSvc.GetBookingRequestInfo(r.Context(), bookingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "booking match status", mapBookingRequestInfo(info))
}

func (h *MatchHandler) ExpireOldRequests(w http.ResponseWriter, r *http.Request) {
	count, err := h.matchSvc.ExpireOldRequests(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "expired old match requests", map[string]int{"expired": count})
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

func pathIDs(r *http.Request) (int64, int64, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	participantID, err := pathID(r, "participantId")
	if err != nil {
		return 0, 0, err
	}
	return id, participantID, nil
}

func pageQuery(r *http.Request) (domain.PageQuery, error) {
	var q domain.PageQuery
	verr := &domain.ValidationError{}
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("page", "must be an integer")
		}
		q.Page = n
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("size", "must be an integer")
		}
		q.Size = n
	}
	if verr.HasErrors() {
		return q, verr
	}
	return q, nil
}

// decodeBody reads an optional JSON body. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError("body", "must be valid JSON")
	}
	// Exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.NewValidationError("body", "must contain a single JSON value")
	}
	return nil
}
