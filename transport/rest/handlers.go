package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
)

const maxBodyBytes = 1 << 10

var errMissingField = errors.New("missing field")

type gameUseCase interface {
	NewSession(ctx context.Context) (string, *entity.View, error)
	GetView(ctx context.Context, sessionID string) (*entity.View, error)
	EndSession(ctx context.Context, sessionID string) error

	Play(ctx context.Context, sessionID string, cell int) (*entity.View, error)
	JumpTo(ctx context.Context, sessionID string, move int) (*entity.View, error)
	ToggleSortOrder(ctx context.Context, sessionID string) (*entity.View, error)
}

type SessionHandlers interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	End(w http.ResponseWriter, r *http.Request)

	Play(w http.ResponseWriter, r *http.Request)
	Jump(w http.ResponseWriter, r *http.Request)
	Sort(w http.ResponseWriter, r *http.Request)
}

type playRequest struct {
	Cell *int `json:"cell"`
}

type jumpRequest struct {
	Move *int `json:"move"`
}

type createResponse struct {
	ID   string       `json:"id"`
	View *entity.View `json:"view"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionHandlers struct {
	logger *slog.Logger
	game   gameUseCase
}

func NewSessionHandlers(logger *slog.Logger, game gameUseCase) SessionHandlers {
	return &sessionHandlers{
		logger: logger.With("component", "rest"),
		game:   game,
	}
}

func (that *sessionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	id, view, err := that.game.NewSession(r.Context())
	if err != nil {
		that.writeError(w, "Create", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, createResponse{ID: id, View: view})
}

func (that *sessionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	view, err := that.game.GetView(r.Context(), chi.URLParam(r, "id"))
	that.respondView(w, "Get", view, err)
}

func (that *sessionHandlers) End(w http.ResponseWriter, r *http.Request) {
	if err := that.game.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "End", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *sessionHandlers) Play(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeBody(w, r, &req); err != nil {
		that.writeError(w, "Play", err)
		return
	}

	if req.Cell == nil {
		that.writeError(w, "Play", fmt.Errorf("%w: cell", errMissingField))
		return
	}

	view, err := that.game.Play(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	that.respondView(w, "Play", view, err)
}

func (that *sessionHandlers) Jump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := decodeBody(w, r, &req); err != nil {
		that.writeError(w, "Jump", err)
		return
	}

	if req.Move == nil {
		that.writeError(w, "Jump", fmt.Errorf("%w: move", errMissingField))
		return
	}

	view, err := that.game.JumpTo(r.Context(), chi.URLParam(r, "id"), *req.Move)
	that.respondView(w, "Jump", view, err)
}

func (that *sessionHandlers) Sort(w http.ResponseWriter, r *http.Request) {
	view, err := that.game.ToggleSortOrder(r.Context(), chi.URLParam(r, "id"))
	that.respondView(w, "Sort", view, err)
}

func (that *sessionHandlers) respondView(w http.ResponseWriter, method string, view *entity.View, err error) {
	if err != nil {
		that.writeError(w, method, err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *sessionHandlers) writeError(w http.ResponseWriter, method string, err error) {
	status, message := StatusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
	} else {
		that.logger.Debug("request rejected", "method", method, "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *sessionHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

// StatusFor maps an error to the HTTP status and the message shown to clients.
func StatusFor(err error) (int, string) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError

	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound, apperror.ErrSessionNotFound.Error()
	case errors.Is(err, apperror.ErrInvalidCell):
		return http.StatusBadRequest, apperror.ErrInvalidCell.Error()
	case errors.Is(err, apperror.ErrMoveOutOfRange):
		return http.StatusBadRequest, apperror.ErrMoveOutOfRange.Error()
	case errors.Is(err, errMissingField),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.As(err, &sizeErr):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}

	return nil
}
