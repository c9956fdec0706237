package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/angelmondragon/importops-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// DeadLetter is the operator view of an event the relay gave up on.
type DeadLetter struct {
	ID            uuid.UUID                  `json:"id"`
	EventID       uuid.UUID                  `json:"eventId"`
	EventType     enums.OutboxEventType      `json:"eventType"`
	AggregateType enums.OutboxAggregateType  `json:"aggregateType"`
	AggregateID   uuid.UUID                  `json:"aggregateId"`
	Reason        enums.OutboxDLQErrorReason `json:"reason"`
	Message       string                     `json:"message,omitempty"`
	AttemptCount  int                        `json:"attemptCount"`
	FailedAt      time.Time                  `json:"failedAt"`
}

// DeadLetters lets operators inspect the DLQ and push entries back onto the
// outbox once the cause is fixed.
type DeadLetters struct {
	tx     txRunner
	events *Repository
	dlq    *DLQRepository
	logg   *logger.Logger
}

func NewDeadLetters(tx txRunner, events *Repository, dlq *DLQRepository, logg *logger.Logger) (*DeadLetters, error) {
	switch {
	case tx == nil:
		return nil, errors.New("transaction runner required")
	case events == nil:
		return nil, errors.New("outbox repository required")
	case dlq == nil:
		return nil, errors.New("dlq repository required")
	}
	return &DeadLetters{tx: tx, events: events, dlq: dlq, logg: logg}, nil
}

func (d *DeadLetters) List(ctx context.Context, filter DLQFilter) ([]DeadLetter, error) {
	rows, err := d.dlq.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dead letters")
	}
	out := make([]DeadLetter, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDeadLetter(row))
	}
	return out, nil
}

// Redrive resets the original event for another publish attempt and removes
// the dead letter in the same transaction.
func (d *DeadLetters) Redrive(ctx context.Context, id uuid.UUID) (*DeadLetter, error) {
	var redriven DeadLetter
	err := d.tx.WithTx(ctx, func(tx *gorm.DB) error {
		row, err := d.dlq.FindForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Newf(pkgerrors.CodeNotFound, "dead letter %s not found", id)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dead letter")
		}
		if err := d.events.RequeueTx(tx, *row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "requeue outbox event")
		}
		if err := d.dlq.DeleteTx(tx, row.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete dead letter")
		}
		redriven = toDeadLetter(*row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if d.logg != nil {
		d.logg.Info(d.logg.WithFields(ctx, map[string]any{
			"dlq_id":     redriven.ID.String(),
			"event_id":   redriven.EventID.String(),
			"event_type": redriven.EventType,
		}), "outbox dead letter redriven")
	}
	return &redriven, nil
}

func toDeadLetter(row models.OutboxDLQ) DeadLetter {
	out := DeadLetter{
		ID:            row.ID,
		EventID:       row.EventID,
		EventType:     row.EventType,
		AggregateType: row.AggregateType,
		AggregateID:   row.AggregateID,
		Reason:        row.ErrorReason,
		AttemptCount:  row.AttemptCount,
		FailedAt:      row.FailedAt,
	}
	if row.ErrorMessage != nil {
		out.Message = *row.ErrorMessage
	}
	return out
}
