// Package zerolog adapts a zerolog.Logger to the client's Logger
// interface for applications already standardized on zerolog.
package zerolog

import (
	"io"

	"github.com/rs/zerolog"
)

type Handler struct {
	logger zerolog.Logger
}

// New wraps an existing zerolog logger.
func New(l zerolog.Logger) *Handler {
	return &Handler{logger: l}
}

// NewWriter builds a timestamped zerolog logger on w and wraps it.
func NewWriter(w io.Writer) *Handler {
	return &Handler{logger: zerolog.New(w).With().Timestamp().Logger()}
}

func (h *Handler) Error(msg string, args ...any) {
	h.emit(h.logger.Error(), msg, args)
}

func (h *Handler) Warn(msg string, args ...any) {
	h.emit(h.logger.Warn(), msg, args)
}

func (h *Handler) Info(msg string, args ...any) {
	h.emit(h.logger.Info(), msg, args)
}

func (h *Handler) Debug(msg string, args ...any) {
	h.emit(h.logger.Debug(), msg, args)
}

// emit applies alternating key/value args the way slog would. A trailing
// key without a value is logged under the "!BADKEY" field, matching
// slog's behavior.
func (h *Handler) emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			ev = ev.Interface("!BADKEY", args[i])
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	if len(args)%2 == 1 {
		ev = ev.Interface("!BADKEY", args[len(args)-1])
	}
	ev.Msg(msg)
}
