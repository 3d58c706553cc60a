package wire

import (
	"encoding/json"
	"errors"

	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrDecodeClient is returned by the binary decoders when a payload is
// empty or starts with an unknown compression flag. JSON, Snappy and
// msgpack errors are returned as they are, not wrapped in it.
var ErrDecodeClient = errors.New("wire: cannot decode client message")

// jsonEnvelope is the self-describing text form: a "type" discriminator
// plus the kind-specific fields inlined (spec.md §4.7: "a
// self-describing text form").
type jsonEnvelope struct {
	Type string `json:"type"`
	ClientMessage
}

// DecodeClientMessageJSON decodes the text form of a client message.
// Unrecognized "type" values decode to KindUnknown rather than erroring,
// matching spec.md §4.7's explicit `unknown` tag.
func DecodeClientMessageJSON(data []byte) (ClientMessage, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ClientMessage{}, err
	}
	msg := env.ClientMessage
	msg.Kind = ClientMessageKind(env.Type)
	if !isKnownKind(msg.Kind) {
		msg.Kind = KindUnknown
		msg.RawType = env.Type
	}
	return msg, nil
}

// EncodeClientMessageJSON is the inverse, used by tests and by any
// debug tooling that wants to replay a captured message.
func EncodeClientMessageJSON(msg ClientMessage) ([]byte, error) {
	env := jsonEnvelope{Type: string(msg.Kind), ClientMessage: msg}
	return json.Marshal(env)
}

func isKnownKind(k ClientMessageKind) bool {
	switch k {
	case KindKey, KindText, KindResize, KindScroll, KindPing, KindSync, KindResync,
		KindFocus, KindHello, KindRequestMaster, KindNewWindow, KindCloseWindow,
		KindClosePane, KindSetLayout, KindSwapPanes, KindResizeLayout, KindMouse,
		KindSelectAll, KindClearSelection, KindClipboardResponse, KindClipboardSet,
		KindCopy, KindClipboardPaste:
		return true
	default:
		return false
	}
}

// --- Compact binary form ---
//
// Layout: [compression-flag byte: 0=raw,1=snappy][msgpack-encoded payload].
// The msgpack payload for client messages is the ClientMessage struct
// itself (tagged by its own Kind field, which msgpack serializes like
// any other field) — this keeps one wire struct for both codecs rather
// than a second hand-rolled binary layout, matching spec.md §4.7's
// "Both carry the same logical message tags."

const (
	compressionRaw    byte = 0
	compressionSnappy byte = 1
)

// EncodeClientMessageBinary produces the compact binary form. compress
// requests Snappy compression of the msgpack payload (spec.md §4.7:
// "large fields may be Snappy-compressed").
func EncodeClientMessageBinary(msg ClientMessage, compress bool) ([]byte, error) {
	payload, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if compress {
		return append([]byte{compressionSnappy}, snappy.Encode(nil, payload)...), nil
	}
	return append([]byte{compressionRaw}, payload...), nil
}

// DecodeClientMessageBinary is the inverse of EncodeClientMessageBinary.
func DecodeClientMessageBinary(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if len(data) < 1 {
		return msg, ErrDecodeClient
	}
	flag, payload := data[0], data[1:]
	switch flag {
	case compressionSnappy:
		raw, err := snappy.Decode(nil, payload)
		if err != nil {
			return msg, err
		}
		payload = raw
	case compressionRaw:
	default:
		return msg, ErrDecodeClient
	}
	if err := msgpack.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if !isKnownKind(msg.Kind) {
		msg.RawType = string(msg.Kind)
		msg.Kind = KindUnknown
	}
	return msg, nil
}

// EncodeServerMessageBinary frames a server->client message: the
// frame's Header.Type carries the discriminator (spec.md §4.7: "Each
// begins with a discriminator byte"); the payload is this function's
// return value, [compression-flag][msgpack(v)].
func EncodeServerMessageBinary(v any, compress bool) ([]byte, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}
	if compress {
		return append([]byte{compressionSnappy}, snappy.Encode(nil, payload)...), nil
	}
	return append([]byte{compressionRaw}, payload...), nil
}

// DecodeServerMessageBinary decodes a server payload produced by
// EncodeServerMessageBinary into dst (a pointer to one of the *Msg
// types in messages.go), selected by the caller from the frame's
// Header.Type.
func DecodeServerMessageBinary(data []byte, dst any) error {
	if len(data) < 1 {
		return ErrDecodeClient
	}
	flag, payload := data[0], data[1:]
	switch flag {
	case compressionSnappy:
		raw, err := snappy.Decode(nil, payload)
		if err != nil {
			return err
		}
		payload = raw
	case compressionRaw:
	default:
		return ErrDecodeClient
	}
	return msgpack.Unmarshal(payload, dst)
}
