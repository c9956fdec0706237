package ops

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/importops-backend/api/responses"
	"github.com/angelmondragon/importops-backend/api/validators"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	"github.com/angelmondragon/importops-backend/pkg/logger"
	"github.com/angelmondragon/importops-backend/pkg/outbox"
)

// DeadLetterService is the operator surface over the outbox DLQ.
type DeadLetterService interface {
	List(ctx context.Context, filter outbox.DLQFilter) ([]outbox.DeadLetter, error)
	Redrive(ctx context.Context, id uuid.UUID) (*outbox.DeadLetter, error)
}

func DeadLetters(svc DeadLetterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		eventType, err := validators.ParseQueryEnum(r, "eventType", enums.ParseOutboxEventType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		aggregateID, err := validators.ParseQueryUUID(r, "aggregateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), outbox.DLQFilter{
			EventType:   eventType,
			AggregateID: aggregateID,
			Limit:       limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func RedriveDeadLetter(svc DeadLetterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "dlqId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		redriven, err := svc.Redrive(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, redriven)
	}
}
