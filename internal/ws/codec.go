package ws

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/walltowall/internal/game"
	"github.com/playmatatu/walltowall/internal/physics"
	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects how server messages are framed.
type Encoding string

const (
	EncodingJSON    Encoding = "json"
	EncodingMsgpack Encoding = "msgpack"
)

// ParseEncoding maps the enc query parameter; empty means JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", string(EncodingJSON):
		return EncodingJSON, nil
	case string(EncodingMsgpack):
		return EncodingMsgpack, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", s)
}

// Envelope is every server to client message.
type Envelope struct {
	Type    string      `json:"type" msgpack:"type"`
	Data    interface{} `json:"data,omitempty" msgpack:"data,omitempty"`
	Message string      `json:"message,omitempty" msgpack:"message,omitempty"`
}

// WSMessage is a client to server message.
type WSMessage struct {
	Type string    `json:"type" msgpack:"type"`
	Data InputData `json:"data" msgpack:"data"`
}

// InputData carries the pointer for aim and launch and the size for resize.
type InputData struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
}

type frame struct {
	kind int
	data []byte
}

func (e Encoding) encode(env Envelope) (frame, error) {
	if e == EncodingMsgpack {
		b, err := msgpack.Marshal(env)
		if err != nil {
			return frame{}, fmt.Errorf("msgpack encode %s: %w", env.Type, err)
		}
		return frame{kind: websocket.BinaryMessage, data: b}, nil
	}

	b, err := json.Marshal(env)
	if err != nil {
		return frame{}, fmt.Errorf("json encode %s: %w", env.Type, err)
	}
	return frame{kind: websocket.TextMessage, data: b}, nil
}

// decodeMessage reads text frames as JSON and binary frames as msgpack,
// whatever the session's outbound encoding is.
func decodeMessage(kind int, data []byte) (WSMessage, error) {
	var msg WSMessage
	var err error
	switch kind {
	case websocket.BinaryMessage:
		err = msgpack.Unmarshal(data, &msg)
	default:
		err = json.Unmarshal(data, &msg)
	}
	if err != nil {
		return WSMessage{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

// toInput converts a client message into a session input.
func toInput(msg WSMessage) (game.Input, error) {
	pointer := physics.NewVec2(msg.Data.X, msg.Data.Y)
	switch game.InputKind(msg.Type) {
	case game.InputAim:
		return game.Input{Kind: game.InputAim, Pointer: pointer}, nil
	case game.InputLaunch:
		return game.Input{Kind: game.InputLaunch, Pointer: pointer}, nil
	case game.InputPause:
		return game.Input{Kind: game.InputPause}, nil
	case game.InputResume:
		return game.Input{Kind: game.InputResume}, nil
	case game.InputResize:
		if msg.Data.Width <= 0 || msg.Data.Height <= 0 {
			return game.Input{}, fmt.Errorf("resize needs positive width and height")
		}
		return game.Input{Kind: game.InputResize, Width: msg.Data.Width, Height: msg.Data.Height}, nil
	}
	return game.Input{}, fmt.Errorf("unknown message type %q", msg.Type)
}
