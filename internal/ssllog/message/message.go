// Package message implements the typed record codec shared by the log file
// and the labeler archive: a framed (timestamp, type tag, length, payload)
// record with five payload variants, tolerant of unknown future tags.
package message

import (
	"encoding/binary"
	"io"

	"github.com/robocup-ssl/ssl-log-tools/internal/bufpool"
	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
	"github.com/robocup-ssl/ssl-log-tools/internal/sslproto"
)

// Type tag values on disk. Any value outside this set is accepted on
// decode and folded into Unknown; only these five are ever produced by
// Encode.
const (
	TagBlank      int32 = 0
	TagUnknown    int32 = 1
	TagVision2010 int32 = 2
	TagRefbox2013 int32 = 3
	TagVision2014 int32 = 4
)

// Payload is the sum type a Message carries: exactly one of the fields
// below is meaningful, selected by Tag.
type Payload struct {
	Tag        int32
	RawBytes   []byte // Vision2010, Unknown
	Referee    *sslproto.RefereeMsg
	Vision     *sslproto.WrapperMsg
}

// Message is one decoded framed record: a receiver-side timestamp and its
// payload.
type Message struct {
	TimestampNs int64
	Payload     Payload
}

const prefixLen = 16 // int64 timestamp + int32 tag + int32 length

// Decode reads one framed record from r. A clean end-of-stream on the first
// byte of the prefix is reported via io.EOF so callers (notably the log
// reader's iterator) can distinguish "no more records" from a truncated
// one. Any other truncation is reported as an UnexpectedEndError.
func Decode(r io.Reader) (*Message, error) {
	prefix := bufpool.Get(prefixLen)
	defer bufpool.Put(prefix)

	n, err := io.ReadFull(r, prefix)
	if err != nil {
		if n == 0 && err == io.EOF {
			return nil, io.EOF
		}
		return nil, sslerrors.NewUnexpectedEndError("message.decode.prefix", err)
	}

	timestamp := int64(binary.BigEndian.Uint64(prefix[0:8]))
	tag := int32(binary.BigEndian.Uint32(prefix[8:12]))
	size := int32(binary.BigEndian.Uint32(prefix[12:16]))

	if size < 0 {
		return nil, sslerrors.NewInvalidMessageSizeError(size)
	}

	msg := &Message{TimestampNs: timestamp}

	switch tag {
	case TagBlank:
		if size != 0 {
			return nil, sslerrors.NewNonZeroBlankSizeError(size)
		}
		msg.Payload = Payload{Tag: TagBlank}
		return msg, nil

	case TagVision2010:
		raw, err := readPayload(r, size)
		if err != nil {
			return nil, err
		}
		msg.Payload = Payload{Tag: TagVision2010, RawBytes: raw}
		return msg, nil

	case TagRefbox2013:
		raw, err := readPayload(r, size)
		if err != nil {
			return nil, err
		}
		ref, err := sslproto.UnmarshalRefereeMsg(raw)
		if err != nil {
			return nil, err
		}
		msg.Payload = Payload{Tag: TagRefbox2013, Referee: ref}
		return msg, nil

	case TagVision2014:
		raw, err := readPayload(r, size)
		if err != nil {
			return nil, err
		}
		vis, err := sslproto.UnmarshalWrapperMsg(raw)
		if err != nil {
			return nil, err
		}
		msg.Payload = Payload{Tag: TagVision2014, Vision: vis}
		return msg, nil

	default:
		// Tag 1 (Unknown) and any tag outside {0..4}: forward-compatibility
		// requires absorbing these as opaque bytes, never an error.
		raw, err := readPayload(r, size)
		if err != nil {
			return nil, err
		}
		msg.Payload = Payload{Tag: TagUnknown, RawBytes: raw}
		return msg, nil
	}
}

func readPayload(r io.Reader, size int32) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, sslerrors.NewUnexpectedEndError("message.decode.payload", err)
	}
	return buf, nil
}

// Encode writes m to w in the on-disk framed format. Tag 1 (Unknown), and
// any tag value outside the known set, is always written with tag value 1
// and the raw payload bytes: the original future tag value is not
// preserved, matching the documented lossy-but-safe forward-compatibility
// contract (such records are never re-encoded by the core pipeline in
// practice, since C3 discards everything but referee/vision frames).
func Encode(w io.Writer, m *Message) error {
	var payloadBytes []byte
	tag := m.Payload.Tag

	switch tag {
	case TagBlank:
		payloadBytes = nil
	case TagVision2010, TagUnknown:
		payloadBytes = m.Payload.RawBytes
	case TagRefbox2013:
		b, err := m.Payload.Referee.Marshal()
		if err != nil {
			return sslerrors.NewProtoDecodeError("message.encode.referee", err)
		}
		payloadBytes = b
	case TagVision2014:
		b, err := m.Payload.Vision.Marshal()
		if err != nil {
			return sslerrors.NewProtoDecodeError("message.encode.vision", err)
		}
		payloadBytes = b
	default:
		tag = TagUnknown
		payloadBytes = m.Payload.RawBytes
	}

	prefix := bufpool.Get(prefixLen)
	defer bufpool.Put(prefix)

	binary.BigEndian.PutUint64(prefix[0:8], uint64(m.TimestampNs))
	binary.BigEndian.PutUint32(prefix[8:12], uint32(tag))
	binary.BigEndian.PutUint32(prefix[12:16], uint32(len(payloadBytes)))

	if _, err := w.Write(prefix); err != nil {
		return sslerrors.NewIOError("message.encode.prefix", err)
	}
	if len(payloadBytes) > 0 {
		if _, err := w.Write(payloadBytes); err != nil {
			return sslerrors.NewIOError("message.encode.payload", err)
		}
	}
	return nil
}
