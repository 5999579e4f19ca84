package notify

import (
	"errors"
	"fmt"
	"strconv"

	"fieldmatch-backend/internal/domain"
	"fieldmatch-backend/internal/utils"
)

var errSinkPanic = errors.New("sink panicked")

// Message is the user-facing text for one event.
type Message struct {
	Title string
	Body  string
}

// Render returns the text shown to recipients of event. The second result is
// false for events that are not announced to users.
func Render(event domain.MatchEvent) (Message, bool) {
	where := venue(event.Booking)
	switch event.Type {
	case domain.EventParticipantJoined:
		return Message{
			Title: "New opponent application",
			Body:  fmt.Sprintf("A team applied to play your match at %s.", where),
		}, true
	case domain.EventParticipantAccepted:
		return Message{
			Title: "Match confirmed",
			Body:  fmt.Sprintf("The match at %s is confirmed. Open the request to see your opponent's contact details.", where),
		}, true
	case domain.EventParticipantRejected:
		if event.Reason == domain.RejectReasonMatchClosed {
			return Message{
				Title: "Match filled",
				Body:  fmt.Sprintf("The organizer picked another team for the match at %s.", where),
			}, true
		}
		return Message{
			Title: "Application declined",
			Body:  fmt.Sprintf("Your application for the match at %s was declined.", where),
		}, true
	case domain.EventParticipantWithdrawn:
		return Message{
			Title: "Application withdrawn",
			Body:  fmt.Sprintf("A team withdrew its application for your match at %s.", where),
		}, true
	case domain.EventMatchRequestCancelled:
		return Message{
			Title: "Match cancelled",
			Body:  fmt.Sprintf("The organizer cancelled the match at %s.", where),
		}, true
	case domain.EventMatchRequestExpired:
		return Message{
			Title: "Match request expired",
			Body:  fmt.Sprintf("No opponent was confirmed in time for the match at %s.", where),
		}, true
	}
	return Message{}, false
}

func venue(b domain.BookingSnapshot) string {
	place := b.FieldName
	if b.ComplexName != "" {
		if place != "" {
			place = b.ComplexName + ", " + place
		} else {
			place = b.ComplexName
		}
	}
	if place == "" {
		place = "your field"
	}
	if slot := utils.SlotLabel(b.SlotStart, b.SlotEnd); slot != "" {
		return place + " on " + slot
	}
	return place
}

func attributes(event domain.MatchEvent) map[string]string {
	attrs := map[string]string{
		"type":             string(event.Type),
		"event_id":         event.ID,
		"match_request_id": strconv.FormatInt(event.MatchRequestID, 10),
		"booking_id":       strconv.FormatInt(event.BookingID, 10),
	}
	if event.ParticipantID != 0 {
		attrs["participant_id"] = strconv.FormatInt(event.ParticipantID, 10)
	}
	if event.Reason != domain.RejectReasonNone {
		attrs["reason"] = string(event.Reason)
	}
	return attrs
}
