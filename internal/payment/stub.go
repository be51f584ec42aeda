// Package payment stands in for the external payment processor.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Charge struct {
	ReservationID uuid.UUID
	Amount        float64
	Method        string
	Reference     string
}

type Receipt struct {
	TransactionID string    `json:"transaction_id"`
	Approved      bool      `json:"approved"`
	Reason        string    `json:"reason,omitempty"`
	ChargedAt     time.Time `json:"charged_at"`
}

// Stub approves every charge except method "declined" or a non-positive
// amount. Amounts are never stored here.
type Stub struct {
	log *zap.Logger
}

func NewStub(log *zap.Logger) *Stub {
	return &Stub{log: log.With(zap.String("payment", "stub"))}
}

func (s *Stub) Charge(ctx context.Context, c Charge) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	receipt := &Receipt{
		TransactionID: "TX-" + strings.ToUpper(uuid.NewString()[:8]),
		ChargedAt:     time.Now(),
	}

	switch {
	case c.Amount <= 0:
		receipt.Reason = fmt.Sprintf("invalid amount %.2f", c.Amount)
	case strings.EqualFold(c.Method, "declined"):
		receipt.Reason = "card declined"
	default:
		receipt.Approved = true
	}

	s.log.Info("Charge processed",
		zap.String("reservation_id", c.ReservationID.String()),
		zap.String("transaction_id", receipt.TransactionID),
		zap.Bool("approved", receipt.Approved),
	)
	return receipt, nil
}
