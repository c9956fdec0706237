package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
)

// ParseUUIDParam reads a required uuid path parameter.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, key+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key).WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// ParseEntityModel reads the party class path parameter.
func ParseEntityModel(r *http.Request, key string) (enums.EntityModel, error) {
	model := enums.EntityModel(strings.TrimSpace(chi.URLParam(r, key)))
	if !model.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported entity model").
			WithDetails(map[string]any{"field": key, "value": string(model)})
	}
	return model, nil
}
