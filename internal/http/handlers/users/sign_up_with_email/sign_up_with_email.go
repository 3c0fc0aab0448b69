package signupwithemail

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	c "verifyme/internal/core/domain/common"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/user"
	"verifyme/internal/core/services"
	signupwithemail "verifyme/internal/core/services/sign_up_with_email"
	"verifyme/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const TestActivationCodeHeader = "x-test-activation-code"

type Handler struct {
	service    services.Service[signupwithemail.Input, signupwithemail.Result]
	isTestMode bool
}

func New(
	service services.Service[signupwithemail.Input, signupwithemail.Result],
	isTestMode bool,
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service, isTestMode: isTestMode}
}

type Input struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 512)),
		validation.Field(&i.Password, validation.Required, validation.Length(0, 256)),
	)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
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
		signupwithemail.Input{Email: c.NewEmail(input.Email), Password: user.RawPassword(input.Password)},
	)
	if errors.Is(err, user.ErrEmailAlreadyExists) {
		response.RenderError(rw, response.CodeUserAlreadyExists, "email already exists", http.StatusConflict)
		return
	}
	if err != nil {
		response.RenderServiceError(rw, r, err)
		return
	}

	if h.isTestMode {
		rw.Header().Set(TestActivationCodeHeader, string(result.User.ActivationCode.Value))
	}
	resp := response.User{}
	resp.FromDomainUser(result.User, response.UserStatusCreated)
	response.Render(rw, resp, http.StatusCreated)
}
