package payments

import (
	"encoding/json"
	"errors"
)

const (
	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	EventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
)

var ErrMalformedEvent = errors.New("malformed webhook event")

// Event is the subset of the provider's webhook envelope the engine reads.
// Unknown fields are ignored.
type Event struct {
	ID           string        `json:"id"`
	EventType    string        `json:"event_type"`
	ResourceType string        `json:"resource_type"`
	CreateTime   string        `json:"create_time"`
	Resource     EventResource `json:"resource"`
}

type EventResource struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	SupplementaryData struct {
		RelatedIDs struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
}

// OrderID is the gateway order the captured resource belongs to, or "".
func (e Event) OrderID() string {
	return e.Resource.SupplementaryData.RelatedIDs.OrderID
}

func ParseEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}
	if ev.EventType == "" {
		return Event{}, errors.Join(ErrMalformedEvent, errors.New("missing event_type"))
	}
	return ev, nil
}
