package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dvpgiftcenter/giftshop-backend/api/responses"
	"github.com/dvpgiftcenter/giftshop-backend/api/validators"
	"github.com/dvpgiftcenter/giftshop-backend/internal/identity"
	pkgerrors "github.com/dvpgiftcenter/giftshop-backend/pkg/errors"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/logger"
)

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), identity.LoginInput{
			Username: body.Username,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newLoginResponse(result))
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
}

func newLoginResponse(result *identity.LoginResult) loginResponse {
	if result == nil {
		return loginResponse{}
	}
	resp := loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(result.ExpiresIn.Seconds()),
	}
	if result.User != nil {
		resp.User = userResponse{
			UserID:   result.User.ID,
			Username: result.User.Username,
			FullName: result.User.FullName,
			Role:     string(result.User.Role),
		}
	}
	return resp
}
