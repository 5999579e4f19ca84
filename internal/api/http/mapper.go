package http

import (
	"time"

	"github.com/shopspring/decimal"

	"fieldmatch-backend/internal/domain"
)

type matchRequestDTO struct {
	ID                   int64           `json:"id"`
	BookingID            int64           `json:"bookingId"`
	CreatorUserID        int64           `json:"creatorUserId"`
	Description          string          `json:"description"`
	Status               string          `json:"status"`
	MatchedParticipantID *int64          `json:"matchedParticipantId,omitempty"`
	FieldName            string          `json:"fieldName"`
	ComplexName          string          `json:"complexName"`
	SlotStart            time.Time       `json:"slotStart"`
	SlotEnd              time.Time       `json:"slotEnd"`
	Price                decimal.Decimal `json:"price"`
	CreatedAt            time.Time       `json:"createdAt"`
	ExpiresAt            time.Time       `json:"expiresAt"`
}

type participantDTO struct {
	ID                  int64     `json:"id"`
	MatchRequestID      int64     `json:"matchRequestId"`
	UserID              int64     `json:"userId"`
	UserName            string    `json:"userName,omitempty"`
	TeamInfo            string    `json:"teamInfo"`
	StatusFromOwner     string    `json:"statusFromOwner"`
	StatusFromApplicant string    `json:"statusFromApplicant"`
	RejectReason        string    `json:"rejectReason,omitempty"`
	IsViewer            bool      `json:"isViewer"`
	JoinedAt            time.Time `json:"joinedAt"`
}

type contactDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type matchDetailDTO struct {
	Request      matchRequestDTO  `json:"request"`
	Creator      *contactDTO      `json:"creator,omitempty"`
	IsCreator    bool             `json:"isCreator"`
	Participants []participantDTO `json:"participants"`
}

type matchSuccessDTO struct {
	MatchRequestID int64           `json:"matchRequestId"`
	BookingID      int64           `json:"bookingId"`
	FieldName      string          `json:"fieldName"`
	ComplexName    string          `json:"complexName"`
	SlotStart      time.Time       `json:"slotStart"`
	SlotEnd        time.Time       `json:"slotEnd"`
	Price          decimal.Decimal `json:"price"`
	Participant    participantDTO  `json:"participant"`
	Creator        contactDTO      `json:"creator"`
	Opponent       contactDTO      `json:"opponent"`
	MatchedAt      time.Time       `json:"matchedAt"`
}

type bookingRequestInfoDTO struct {
	HasRequest     bool   `json:"hasRequest"`
	MatchRequestID *int64 `json:"matchRequestId,omitempty"`
}

func mapMatchRequest(m domain.MatchRequest) matchRequestDTO {
	return matchRequestDTO{
		ID:                   m.ID,
		BookingID:            m.BookingID,
		CreatorUserID:        m.CreatorUserID,
		Description:          m.Description,
		Status:               string(m.Status),
		MatchedParticipantID: m.MatchedParticipantID,
		FieldName:            m.Booking.FieldName,
		ComplexName:          m.Booking.ComplexName,
		SlotStart:            m.Booking.SlotStart,
		SlotEnd:              m.Booking.SlotEnd,
		Price:                m.Booking.Price,
		CreatedAt:            m.CreatedAt,
		ExpiresAt:            m.ExpiresAt,
	}
}

func mapParticipant(p domain.Participant) participantDTO {
	return participantDTO{
		ID:                  p.ID,
		MatchRequestID:      p.MatchRequestID,
		UserID:              p.UserID,
		TeamInfo:            p.TeamInfo,
		StatusFromOwner:     string(p.OwnerStatus),
		StatusFromApplicant: string(p.ApplicantStatus),
		RejectReason:        string(p.RejectReason),
		JoinedAt:            p.JoinedAt,
	}
}

func mapContact(c domain.UserContact) contactDTO {
	return contactDTO{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
	}
}

func mapMatchDetail(d *domain.MatchRequestDetail) matchDetailDTO {
	dto := matchDetailDTO{
		Request:      mapMatchRequest(d.Request),
		IsCreator:    d.IsCreator,
		Participants: make([]participantDTO, 0, len(d.Participants)),
	}
	if d.Creator != nil {
		c := mapContact(*d.Creator)
		dto.Creator = &c
	}
	for _, pv := range d.Participants {
		p := mapParticipant(pv.Participant)
		p.UserName = pv.UserName
		p.IsViewer = pv.IsViewer
		dto.Participants = append(dto.Participants, p)
	}
	return dto
}

func mapMatchSuccess(s *domain.MatchSuccess) matchSuccessDTO {
	return matchSuccessDTO{
		MatchRequestID: s.MatchRequestID,
		BookingID:      s.BookingID,
		FieldName:      s.Booking.FieldName,
		ComplexName:    s.Booking.ComplexName,
		SlotStart:      s.Booking.SlotStart,
		SlotEnd:        s.Booking.SlotEnd,
		Price:          s.Booking.Price,
		Participant:    mapParticipant(s.Participant),
		Creator:        mapContact(s.Creator),
		Opponent:       mapContact(s.Opponent),
		MatchedAt:      s.MatchedAt,
	}
}

func mapBookingRequestInfo(info *domain.BookingRequestInfo) bookingRequestInfoDTO {
	return bookingRequestInfoDTO{
		HasRequest:     info.HasRequest,
		MatchRequestID: info.MatchRequestID,
	}
}
