// Package types contains the response shapes shared by every transport.
package types

import (
	"encoding/json"

	"github.com/okian/sportsevents/internal/domain/model"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the uniform JSON body returned by every handler. The HTTP
// status code travels beside it, never inside it.
type Envelope struct {
	Status      string        `json:"status"`
	Message     string        `json:"message,omitempty"`
	EventID     string        `json:"event_id,omitempty"`
	Event       *model.Event  `json:"event,omitempty"`
	Events      []model.Event `json:"events,omitzero"`
	MatchEvents []model.Event `json:"match_events,omitzero"`
}

// Marshal renders the envelope with a 4-space indent.
func (e Envelope) Marshal() ([]byte, error) {
	return json.MarshalIndent(e, "", "    ")
}
