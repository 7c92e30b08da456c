// Package ticketcode generates the opaque scannable codes embedded in
// tickets. A code is base64url(JSON payload); scanners decode it back into
// the payload for offline inspection before hitting the validate endpoint.
package ticketcode

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

type generator struct {
	now func() time.Time
}

// NewGenerator returns a TicketCodeGenerator. The embedded nonce makes every
// code unique even for identical purchase parameters in the same instant.
func NewGenerator() domain.TicketCodeGenerator {
	return &generator{now: time.Now}
}

func (g *generator) Generate(eventID, userID, ticketTypeID string) (string, error) {
	payload := domain.TicketCodePayload{
		EventID:      eventID,
		UserID:       userID,
		TicketTypeID: ticketTypeID,
		IssuedAt:     g.now().UTC(),
		Nonce:        uuid.NewString(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal ticket code payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func (g *generator) Decode(code string) (*domain.TicketCodePayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("decode ticket code: %w", err)
	}
	payload := &domain.TicketCodePayload{}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("unmarshal ticket code payload: %w", err)
	}
	if payload.EventID == "" || payload.UserID == "" || payload.TicketTypeID == "" || payload.Nonce == "" {
		return nil, fmt.Errorf("incomplete ticket code payload")
	}
	return payload, nil
}
