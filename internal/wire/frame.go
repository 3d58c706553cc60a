// Package wire implements spec.md §4.7's MessageCodec: the duplex
// channel's binary frame header, the client-message tagged union, and
// the server's discriminator-prefixed binary messages.
//
// The frame layout is grounded on
// _examples/framegrace-texelation/protocol/protocol.go (magic-prefixed
// header, CRC32 checksum over header+payload, explicit payload
// length) but reshaped for muxd's actual deployment: the teacher's
// header carries a 16-byte SessionID because its server multiplexes
// several independent sessions behind one listener; a muxd reactor
// owns exactly one Session per process (spec.md §3), so that field
// would be dead weight on every frame. In its place the header carries
// a SentAtUnixMilli timestamp, letting a client (or the admin socket)
// compute one-way/round-trip latency per frame without a separate
// ping round trip for every message kind.
package wire

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"time"
)

const (
	magic      uint32 = 0x4d555801 // "MUX\x01", muxd's own framing magic
	headerSize        = 32
)

// FlagChecksum marks a frame as CRC32-protected.
const FlagChecksum uint8 = 0x01

// Version is the wire protocol version this package implements.
const Version uint8 = 0

// Header is the fixed portion of every frame (spec.md §4.7).
type Header struct {
	Version         uint8
	Type            MessageType
	Flags           uint8
	Reserved        uint8
	Sequence        uint64
	PayloadLen      uint32
	Checksum        uint32
	SentAtUnixMilli int64
}

var (
	ErrInvalidMagic     = errors.New("wire: invalid magic")
	ErrUnsupportedVer   = errors.New("wire: unsupported version")
	ErrShortPayload     = errors.New("wire: payload shorter than declared length")
	ErrChecksumMismatch = errors.New("wire: checksum mismatch")
)

// WriteFrame serializes the header and payload to w. If hdr's
// SentAtUnixMilli is zero, it is stamped with the current time.
func WriteFrame(w io.Writer, hdr Header, payload []byte) error {
	hdr.PayloadLen = uint32(len(payload))
	if hdr.SentAtUnixMilli == 0 {
		hdr.SentAtUnixMilli = time.Now().UnixMilli()
	}

	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:], magic)
	buf[4] = hdr.Version
	buf[5] = byte(hdr.Type)
	buf[6] = hdr.Flags
	buf[7] = hdr.Reserved
	binary.LittleEndian.PutUint64(buf[8:16], hdr.Sequence)
	binary.LittleEndian.PutUint32(buf[16:20], hdr.PayloadLen)
	binary.LittleEndian.PutUint64(buf[20:28], uint64(hdr.SentAtUnixMilli))

	checksum := hdr.Checksum
	if hdr.Flags&FlagChecksum != 0 {
		crc := crc32.NewIEEE()
		_, _ = crc.Write(buf[4:28])
		if len(payload) > 0 {
			_, _ = crc.Write(payload)
		}
		checksum = crc.Sum32()
	}
	binary.LittleEndian.PutUint32(buf[28:32], checksum)

	if _, err := w.Write(buf); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads a header and payload from r.
func ReadFrame(r io.Reader) (Header, []byte, error) {
	var hdr Header
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return hdr, nil, err
	}

	if binary.LittleEndian.Uint32(buf[0:4]) != magic {
		return hdr, nil, ErrInvalidMagic
	}

	hdr.Version = buf[4]
	hdr.Type = MessageType(buf[5])
	hdr.Flags = buf[6]
	hdr.Reserved = buf[7]
	hdr.Sequence = binary.LittleEndian.Uint64(buf[8:16])
	hdr.PayloadLen = binary.LittleEndian.Uint32(buf[16:20])
	hdr.SentAtUnixMilli = int64(binary.LittleEndian.Uint64(buf[20:28]))
	hdr.Checksum = binary.LittleEndian.Uint32(buf[28:32])

	if hdr.Version != Version {
		return hdr, nil, ErrUnsupportedVer
	}

	payload := make([]byte, hdr.PayloadLen)
	if hdr.PayloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return hdr, nil, ErrShortPayload
			}
			return hdr, nil, err
		}
	}

	if hdr.Flags&FlagChecksum != 0 {
		crc := crc32.NewIEEE()
		_, _ = crc.Write(buf[4:28])
		if len(payload) > 0 {
			_, _ = crc.Write(payload)
		}
		computed := crc.Sum32()
		if computed != hdr.Checksum {
			return hdr, nil, ErrChecksumMismatch
		}
	}

	return hdr, payload, nil
}
