package activateuser

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	c "verifyme/internal/core/domain/common"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/user"
	"verifyme/internal/core/services"
	activateuser "verifyme/internal/core/services/activate_user"
	"verifyme/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
)

var errMalformedActivationCode = errors.New("must be exactly 4 digits")

type Handler struct {
	service services.Service[activateuser.Input, activateuser.Result]
}

func New(
	service services.Service[activateuser.Input, activateuser.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Input struct {
	Code string `json:"code"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(
			&i.Code,
			validation.Required,
			validation.By(isWellFormedActivationCode),
		),
	)
}

func isWellFormedActivationCode(value interface{}) error {
	code, _ := value.(string)
	if !user.ActivationCode(code).IsWellFormed() {
		return errMalformedActivationCode
	}
	return nil
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok || email == "" {
		response.RenderUnauthorized(rw)
		return
	}

	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderInvalidRequestData(rw)
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderValidationError(rw, err)
		return
	}

	result, err := h.service.Run(
		r.Context(),
		activateuser.Input{
			Email:          c.NewEmail(email),
			Password:       user.RawPassword(password),
			ActivationCode: user.ActivationCode(input.Code),
		},
	)
	switch {
	case err == nil:
	case errors.Is(err, user.ErrInvalidCredentials):
		response.RenderUnauthorized(rw)
		return
	case errors.Is(err, user.ErrUserAlreadyActive):
		response.RenderError(rw, response.CodeUserAlreadyActivated, "user is already activated", http.StatusConflict)
		return
	case errors.Is(err, user.ErrInvalidActivationCode):
		response.RenderError(rw, response.CodeInvalidActivationCode, "invalid activation code", http.StatusBadRequest)
		return
	case errors.Is(err, user.ErrActivationCodeExpired):
		response.RenderError(rw, response.CodeExpiredActivationCode, "activation code has expired", http.StatusBadRequest)
		return
	default:
		response.RenderServiceError(rw, r, err)
		return
	}

	resp := response.User{}
	resp.FromDomainUser(result.User, response.UserStatusActivated)
	response.Render(rw, resp, http.StatusOK)
}
