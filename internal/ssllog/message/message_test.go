package message

import (
	"bytes"
	"errors"
	"io"
	"testing"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
	"github.com/robocup-ssl/ssl-log-tools/internal/sslproto"
)

func TestEncodeDecodeBlankRoundTrip(t *testing.T) {
	msg := &Message{TimestampNs: 7, Payload: Payload{Tag: TagBlank}}

	var buf bytes.Buffer
	if err := Encode(&buf, msg); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.TimestampNs != msg.TimestampNs || got.Payload.Tag != TagBlank {
		t.Fatalf("round-trip mismatch: got %+v", got)
	}
}

func TestEncodeDecodeVision2010RoundTrip(t *testing.T) {
	msg := &Message{
		TimestampNs: 123456789,
		Payload:     Payload{Tag: TagVision2010, RawBytes: []byte{1, 2, 3, 4, 5}},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, msg); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got.Payload.RawBytes, msg.Payload.RawBytes) {
		t.Fatalf("payload mismatch: got %v want %v", got.Payload.RawBytes, msg.Payload.RawBytes)
	}
}

func TestEncodeDecodeRefbox2013RoundTrip(t *testing.T) {
	msg := &Message{
		TimestampNs: 42,
		Payload: Payload{
			Tag: TagRefbox2013,
			Referee: &sslproto.RefereeMsg{
				PacketTimestamp: 99,
				Stage:           sslproto.StageNormalFirstHalf,
				StageTimeLeft:   -5,
			},
		},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, msg); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Payload.Referee == nil || got.Payload.Referee.PacketTimestamp != 99 {
		t.Fatalf("referee payload mismatch: got %+v", got.Payload.Referee)
	}
	if got.Payload.Referee.StageTimeLeft != -5 {
		t.Fatalf("stage_time_left mismatch: got %d", got.Payload.Referee.StageTimeLeft)
	}
}

func TestEncodeDecodeVision2014RoundTrip(t *testing.T) {
	msg := &Message{
		TimestampNs: 1,
		Payload: Payload{
			Tag: TagVision2014,
			Vision: &sslproto.WrapperMsg{
				Detection: sslproto.DetectionFrame{CameraID: 3, FrameNumber: 10},
			},
		},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, msg); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Payload.Vision == nil || got.Payload.Vision.Detection.CameraID != 3 {
		t.Fatalf("vision payload mismatch: got %+v", got.Payload.Vision)
	}
}

func TestDecodeUnknownTagAbsorbed(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 1}) // timestamp = 1
	buf.Write([]byte{0, 0, 0, 99})            // tag = 99 (unknown future tag)
	buf.Write([]byte{0, 0, 0, 3})             // size = 3
	buf.Write([]byte{0xAA, 0xBB, 0xCC})

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode should absorb unknown tags without error, got: %v", err)
	}
	if got.Payload.Tag != TagUnknown {
		t.Fatalf("expected TagUnknown, got %d", got.Payload.Tag)
	}
	if !bytes.Equal(got.Payload.RawBytes, []byte{0xAA, 0xBB, 0xCC}) {
		t.Fatalf("unexpected raw bytes: %v", got.Payload.RawBytes)
	}
}

func TestDecodeCleanEOFAtBoundary(t *testing.T) {
	var buf bytes.Buffer
	_, err := Decode(&buf)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF at a clean record boundary, got: %v", err)
	}
}

func TestDecodeTruncatedPrefixIsUnexpectedEnd(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 0, 0}) // only 6 of 16 prefix bytes

	_, err := Decode(&buf)
	if err == nil {
		t.Fatal("expected an error for a truncated prefix")
	}
	var uee *sslerrors.UnexpectedEndError
	if !errors.As(err, &uee) {
		t.Fatalf("expected UnexpectedEndError, got %T: %v", err, err)
	}
}

func TestDecodeTruncatedPayloadIsUnexpectedEnd(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0}) // timestamp
	buf.Write([]byte{0, 0, 0, byte(TagVision2010)})
	buf.Write([]byte{0, 0, 0, 10}) // declares 10 bytes of payload
	buf.Write([]byte{1, 2, 3})     // only 3 present

	_, err := Decode(&buf)
	var uee *sslerrors.UnexpectedEndError
	if !errors.As(err, &uee) {
		t.Fatalf("expected UnexpectedEndError, got %T: %v", err, err)
	}
}

func TestDecodeNegativeSizeRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	buf.Write([]byte{0, 0, 0, byte(TagBlank)})
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF}) // -1 as big-endian int32

	_, err := Decode(&buf)
	var ise *sslerrors.InvalidMessageSizeError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidMessageSizeError, got %T: %v", err, err)
	}
}

func TestDecodeBlankWithNonZeroSizeRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	buf.Write([]byte{0, 0, 0, byte(TagBlank)})
	buf.Write([]byte{0, 0, 0, 4})
	buf.Write([]byte{1, 2, 3, 4})

	_, err := Decode(&buf)
	var nzb *sslerrors.NonZeroBlankSizeError
	if !errors.As(err, &nzb) {
		t.Fatalf("expected NonZeroBlankSizeError, got %T: %v", err, err)
	}
}

func TestEncodeDecodeSequenceOfMixedTags(t *testing.T) {
	msgs := []*Message{
		{TimestampNs: 0, Payload: Payload{Tag: TagBlank}},
		{TimestampNs: 1, Payload: Payload{Tag: TagVision2010, RawBytes: []byte{9, 8, 7}}},
		{TimestampNs: 2, Payload: Payload{Tag: TagRefbox2013, Referee: &sslproto.RefereeMsg{PacketTimestamp: 5}}},
		{TimestampNs: 3, Payload: Payload{Tag: TagVision2014, Vision: &sslproto.WrapperMsg{}}},
	}

	var buf bytes.Buffer
	for _, m := range msgs {
		if err := Encode(&buf, m); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	for i, want := range msgs {
		got, err := Decode(&buf)
		if err != nil {
			t.Fatalf("Decode message %d: %v", i, err)
		}
		if got.TimestampNs != want.TimestampNs || got.Payload.Tag != want.Payload.Tag {
			t.Fatalf("message %d mismatch: got %+v want %+v", i, got, want)
		}
	}

	if _, err := Decode(&buf); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after the last message, got: %v", err)
	}
}
