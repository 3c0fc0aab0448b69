package health

import (
	"context"
	"net/http"
	"time"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/logging"
	"verifyme/internal/http/handlers/response"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log logging.Logger
	db  Pinger
}

func New(log logging.Logger, db Pinger) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &Handler{log: log, db: db}
}

type status struct {
	Status string `json:"status"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Warning(ctx, "Health check failed.", logging.Entry("err", err))
		response.RenderServiceUnavailable(rw)
		return
	}
	response.Render(rw, status{Status: "ok"}, http.StatusOK)
}
