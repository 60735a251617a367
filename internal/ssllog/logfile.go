// Package ssllog implements the on-disk capture log format: a fixed header,
// a version word, and a sequence of framed messages (see the message
// subpackage) read and written sequentially.
package ssllog

import (
	"encoding/binary"
	"io"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog/message"
)

// Header is the exact 12-byte magic every log file begins with.
var Header = []byte("SSL_LOG_FILE")

// Version is the only version word this package understands.
const Version int32 = 1

// Reader exposes a lazy, finite, single-pass sequence of framed messages
// read from an underlying stream. Construct with Open.
type Reader struct {
	r io.Reader
}

// Open validates the header and version prelude and returns a Reader
// positioned at the first record.
func Open(r io.Reader) (*Reader, error) {
	got := make([]byte, len(Header))
	if _, err := io.ReadFull(r, got); err != nil {
		return nil, sslerrors.NewUnexpectedEndError("ssllog.Open.header", err)
	}
	if string(got) != string(Header) {
		return nil, sslerrors.NewInvalidHeaderError("ssllog.Open", Header, got)
	}

	var verBuf [4]byte
	if _, err := io.ReadFull(r, verBuf[:]); err != nil {
		return nil, sslerrors.NewUnexpectedEndError("ssllog.Open.version", err)
	}
	version := int32(binary.BigEndian.Uint32(verBuf[:]))
	if version != Version {
		return nil, sslerrors.NewUnsupportedVersionError("ssllog.Open", int64(Version), int64(version))
	}

	return &Reader{r: r}, nil
}

// Next decodes and returns the next record. A clean end-of-stream at a
// record boundary returns (nil, nil), the sentinel the iterator-style
// callers (Each, C3's feeder) use to stop without treating it as failure.
// Any other failure, including a truncated record, is returned as an error.
func (rd *Reader) Next() (*message.Message, error) {
	msg, err := message.Decode(rd.r)
	if err != nil {
		// Only a bare io.EOF marks a record boundary; a truncated payload is
		// an UnexpectedEndError that may itself wrap io.EOF.
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// Each calls fn for every record in order, stopping at the first clean
// end-of-stream or the first error fn or decoding returns.
func (rd *Reader) Each(fn func(*message.Message) error) error {
	for {
		msg, err := rd.Next()
		if err != nil {
			return err
		}
		if msg == nil {
			return nil
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
}

// Writer mirrors the header/version prelude on construction, then appends
// encoded records via Write.
type Writer struct {
	w io.Writer
}

// Create writes the header/version prelude to w and returns a Writer ready
// to append records.
func Create(w io.Writer) (*Writer, error) {
	if _, err := w.Write(Header); err != nil {
		return nil, sslerrors.NewIOError("ssllog.Create.header", err)
	}
	var verBuf [4]byte
	binary.BigEndian.PutUint32(verBuf[:], uint32(Version))
	if _, err := w.Write(verBuf[:]); err != nil {
		return nil, sslerrors.NewIOError("ssllog.Create.version", err)
	}
	return &Writer{w: w}, nil
}

// Write appends one framed record.
func (wr *Writer) Write(msg *message.Message) error {
	return message.Encode(wr.w, msg)
}
