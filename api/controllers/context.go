package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dvpgiftcenter/giftshop-backend/api/middleware"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
)

// actorIDFromRequest resolves the authenticated user id seeded by the auth middleware.
func actorIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}
	return id, nil
}
