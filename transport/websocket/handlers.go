package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/timetravel-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/timetravel-tictactoe/internal/entity"
)

var errMissingField = errors.New("missing field")

func (that *Server) handlePlay(ctx context.Context, sessionID string, msg *Message) (*entity.View, error) {
	payload, err := decodePayload(msg)
	if err != nil {
		return nil, err
	}

	if payload.Cell == nil {
		return nil, fmt.Errorf("%w: cell", errMissingField)
	}

	return that.game.Play(ctx, sessionID, *payload.Cell)
}

func (that *Server) handleJump(ctx context.Context, sessionID string, msg *Message) (*entity.View, error) {
	payload, err := decodePayload(msg)
	if err != nil {
		return nil, err
	}

	if payload.Move == nil {
		return nil, fmt.Errorf("%w: move", errMissingField)
	}

	return that.game.JumpTo(ctx, sessionID, *payload.Move)
}

func (that *Server) handleSort(ctx context.Context, sessionID string, _ *Message) (*entity.View, error) {
	return that.game.ToggleSortOrder(ctx, sessionID)
}

func decodePayload(msg *Message) (*Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

// clientError returns the text shown to the client and whether err is the client's fault.
func clientError(err error) (string, bool) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return apperror.ErrSessionNotFound.Error(), true
	case errors.Is(err, apperror.ErrInvalidCell):
		return apperror.ErrInvalidCell.Error(), true
	case errors.Is(err, apperror.ErrMoveOutOfRange):
		return apperror.ErrMoveOutOfRange.Error(), true
	case errors.Is(err, apperror.ErrUnsupportedAction),
		errors.Is(err, errMissingField),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		return err.Error(), true
	default:
		return "internal server error", false
	}
}
