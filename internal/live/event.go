package live

import (
	"errors"
	"fmt"

	"github.com/deevus/gtnh-translator-tui/internal/state"
	"github.com/goccy/go-json"
)

// Envelope types understood by the client.
const (
	TypeProgress = "progress"
	TypeStatus   = "status"
	TypeError    = "error"
)

// Event is a decoded push message that knows how to patch the view state.
type Event interface {
	Type() string
	Reducer() state.Reducer
}

// ProgressEvent carries a complete progress snapshot.
type ProgressEvent struct {
	Snapshot state.ProgressSnapshot
}

func (ProgressEvent) Type() string { return TypeProgress }

func (e ProgressEvent) Reducer() state.Reducer { return state.WithProgress(e.Snapshot) }

// StatusEvent reports the pipeline phase.
type StatusEvent struct {
	Message string
}

func (StatusEvent) Type() string { return TypeStatus }

func (e StatusEvent) Reducer() state.Reducer { return state.WithStatus(e.Message) }

// ErrorEvent is a pipeline failure reported by the server. It does not end
// the connection.
type ErrorEvent struct {
	Message string
}

func (ErrorEvent) Type() string { return TypeError }

func (e ErrorEvent) Reducer() state.Reducer { return state.WithServerError(e.Message) }

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type messagePayload struct {
	Message string `json:"message"`
}

var errMissingData = errors.New("missing data")

// Decode parses one push message. Unknown envelope types yield a nil Event
// and a nil error so newer servers can add types freely.
func Decode(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Err: err}
	}

	switch env.Type {
	case TypeProgress:
		var snap state.ProgressSnapshot
		if err := decodeData(env.Data, &snap); err != nil {
			return nil, &DecodeError{Type: env.Type, Err: err}
		}
		return ProgressEvent{Snapshot: snap}, nil

	case TypeStatus, TypeError:
		var p messagePayload
		if err := decodeData(env.Data, &p); err != nil {
			return nil, &DecodeError{Type: env.Type, Err: err}
		}
		if env.Type == TypeError {
			return ErrorEvent{Message: p.Message}, nil
		}
		return StatusEvent{Message: p.Message}, nil

	case "":
		return nil, &DecodeError{Err: fmt.Errorf("envelope has no type")}

	default:
		return nil, nil
	}
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return errMissingData
	}
	return json.Unmarshal(data, v)
}
