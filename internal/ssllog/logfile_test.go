package ssllog

import (
	"bytes"
	"errors"
	"testing"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog/message"
	"github.com/robocup-ssl/ssl-log-tools/internal/sslproto"
)

func TestOpenRejectsBadHeader(t *testing.T) {
	buf := bytes.NewBufferString("NOT_A_LOG_FILE")
	_, err := Open(buf)
	var ihe *sslerrors.InvalidHeaderError
	if !errors.As(err, &ihe) {
		t.Fatalf("expected InvalidHeaderError, got %T: %v", err, err)
	}
}

func TestOpenRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Header)
	buf.Write([]byte{0, 0, 0, 2}) // version 2

	_, err := Open(&buf)
	var uve *sslerrors.UnsupportedVersionError
	if !errors.As(err, &uve) {
		t.Fatalf("expected UnsupportedVersionError, got %T: %v", err, err)
	}
}

func TestEmptyLogIteratesToNothing(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Create(&buf); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rd, err := Open(&buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	msg, err := rd.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if msg != nil {
		t.Fatalf("expected nil at end of an empty log, got %+v", msg)
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	msgs := []*message.Message{
		{TimestampNs: 100, Payload: message.Payload{Tag: message.TagRefbox2013, Referee: &sslproto.RefereeMsg{Stage: sslproto.StageNormalFirstHalf}}},
		{TimestampNs: 101, Payload: message.Payload{Tag: message.TagVision2014, Vision: &sslproto.WrapperMsg{Detection: sslproto.DetectionFrame{CameraID: 0}}}},
		{TimestampNs: 102, Payload: message.Payload{Tag: message.TagBlank}},
	}

	var buf bytes.Buffer
	wr, err := Create(&buf)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, m := range msgs {
		if err := wr.Write(m); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	rd, err := Open(&buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var got []*message.Message
	if err := rd.Each(func(m *message.Message) error {
		got = append(got, m)
		return nil
	}); err != nil {
		t.Fatalf("Each: %v", err)
	}

	if len(got) != len(msgs) {
		t.Fatalf("expected %d messages, got %d", len(msgs), len(got))
	}
	for i := range msgs {
		if got[i].TimestampNs != msgs[i].TimestampNs || got[i].Payload.Tag != msgs[i].Payload.Tag {
			t.Fatalf("message %d mismatch: got %+v want %+v", i, got[i], msgs[i])
		}
	}
}

func TestIterationStopsAtMidRecordTruncation(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Create(&buf); err != nil {
		t.Fatalf("Create: %v", err)
	}
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 1}) // partial record: timestamp only

	rd, err := Open(&buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err = rd.Next()
	var uee *sslerrors.UnexpectedEndError
	if !errors.As(err, &uee) {
		t.Fatalf("expected UnexpectedEndError for a mid-record truncation, got %T: %v", err, err)
	}
}
