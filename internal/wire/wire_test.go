package wire

import (
	"bytes"
	"testing"
)

func TestFrameRoundTripWithChecksum(t *testing.T) {
	var buf bytes.Buffer
	hdr := Header{Version: Version, Type: MsgDelta, Flags: FlagChecksum, Sequence: 42}
	payload := []byte("hello pane")
	if err := WriteFrame(&buf, hdr, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	gotHdr, gotPayload, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if gotHdr.Type != MsgDelta || gotHdr.Sequence != 42 {
		t.Fatalf("header mismatch: %+v", gotHdr)
	}
	if string(gotPayload) != string(payload) {
		t.Fatalf("payload mismatch: %q", gotPayload)
	}
}

func TestFrameChecksumMismatchDetected(t *testing.T) {
	var buf bytes.Buffer
	hdr := Header{Version: Version, Type: MsgPing, Flags: FlagChecksum}
	if err := WriteFrame(&buf, hdr, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	if _, _, err := ReadFrame(bytes.NewReader(corrupted)); err != ErrChecksumMismatch {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestDecodeClientMessageJSONKnownKind(t *testing.T) {
	data := []byte(`{"type":"resize","paneId":3,"cols":80,"rows":24}`)
	msg, err := DecodeClientMessageJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Kind != KindResize || msg.PaneID != 3 || msg.Cols != 80 || msg.Rows != 24 {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestDecodeClientMessageJSONUnknownKindFallsBack(t *testing.T) {
	data := []byte(`{"type":"teleport"}`)
	msg, err := DecodeClientMessageJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Kind != KindUnknown || msg.RawType != "teleport" {
		t.Fatalf("expected unknown fallback, got %+v", msg)
	}
}

func TestClientMessageBinaryRoundTripRaw(t *testing.T) {
	in := ClientMessage{Kind: KindKey, KeyCode: 13, Modifiers: 1}
	enc, err := EncodeClientMessageBinary(in, false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeClientMessageBinary(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Kind != KindKey || out.KeyCode != 13 || out.Modifiers != 1 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestClientMessageBinaryRoundTripCompressed(t *testing.T) {
	in := ClientMessage{Kind: KindText, Text: "hello world, this compresses fine probably"}
	enc, err := EncodeClientMessageBinary(in, true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if enc[0] != compressionSnappy {
		t.Fatalf("expected snappy flag byte")
	}
	out, err := DecodeClientMessageBinary(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Kind != KindText || out.Text != in.Text {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestServerMessageBinaryRoundTrip(t *testing.T) {
	in := TitleMsg{PaneID: 7, Title: "bash"}
	enc, err := EncodeServerMessageBinary(in, false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out TitleMsg
	if err := DecodeServerMessageBinary(enc, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
