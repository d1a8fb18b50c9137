package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrInvalidMark       = errors.New("invalid player mark")
	ErrMoveOutOfRange    = errors.New("move is out of history range")
	ErrInvalidBoardSize  = errors.New("invalid board size")
	ErrCorruptedState    = errors.New("game state is corrupted")
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnknownStoreType  = errors.New("unknown session store type")
	ErrUnsupportedAction = errors.New("unsupported action")
)
