package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/apperror"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/response"
)

// failureDelay pads timing-sensitive failure paths (login, reset request)
// to a uniform minimum duration, blunting timing-based account enumeration.
const failureDelay = 400 * time.Millisecond

func uniformDelay(start time.Time) {
	if elapsed := time.Since(start); elapsed < failureDelay {
		time.Sleep(failureDelay - elapsed)
	}
}

// writeErr maps a typed error onto the response envelope. Internal error
// messages are suppressed in production and always logged with their code.
func writeErr(w http.ResponseWriter, logger *slog.Logger, production bool, err error) {
	ae := apperror.From(err)
	msg := ae.Message
	if ae.Status >= 500 {
		logger.Error("request failed", "code", ae.Code, "error", err)
		if production {
			msg = "internal error"
		}
	}
	response.Error(w, ae.Status, ae.Code, msg)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	response.JSON(w, status, data)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.Validation("malformed JSON body")
	}
	return nil
}
