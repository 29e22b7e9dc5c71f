package validators

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/dispatchline/delivery-console/pkg/errors"
)

// ParseID parses a record id. An empty value fails with requiredMsg.
func ParseID(raw, field, requiredMsg string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, requiredMsg)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
