package labeler

import (
	"encoding/binary"
	"io"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog/message"
	"github.com/robocup-ssl/ssl-log-tools/internal/sslproto"
)

// DataHeader is the exact 16-byte magic every labeler archive begins with.
var DataHeader = []byte("SSL_LABELER_FILE")

// DataVersion is the only version word this package understands.
const DataVersion uint32 = 1

// Writer wraps an output sink, re-grouping raw log records into frame
// groups via a Segmenter and appending them as size-prefixed records,
// finalized by a trailing metadata footer on Close. The sink is a plain
// io.Writer: group offsets are tracked by counting the bytes written, not
// by seeking. Close must be called, normally via defer, so the footer is
// written on every exit path — mirroring a scoped resource whose release
// is guaranteed rather than left to the caller's discipline.
type Writer struct {
	w       io.Writer
	pos     int64
	seg     Segmenter
	offsets []uint64

	numPassingEvents  uint32
	numGoalShotEvents uint32

	closed bool
}

// Create writes the header/version prelude to w and returns a Writer ready
// to accept records via AddMsg.
func Create(w io.Writer) (*Writer, error) {
	if _, err := w.Write(DataHeader); err != nil {
		return nil, sslerrors.NewIOError("labeler.Create.header", err)
	}
	var verBuf [4]byte
	binary.BigEndian.PutUint32(verBuf[:], DataVersion)
	if _, err := w.Write(verBuf[:]); err != nil {
		return nil, sslerrors.NewIOError("labeler.Create.version", err)
	}
	return &Writer{w: w, pos: int64(len(DataHeader) + 4)}, nil
}

// AddMsg forwards a raw log record to the segmenter and, if it triggers a
// flush, appends the flushed group to the archive.
func (wr *Writer) AddMsg(msg *message.Message) error {
	group, ok := wr.seg.Feed(msg)
	if !ok {
		return nil
	}
	return wr.emitGroup(group)
}

// SetEventCounts sets the passing/goal-shot event counters carried in the
// trailing metadata record. Call before Close.
func (wr *Writer) SetEventCounts(numPassing, numGoalShot uint32) {
	wr.numPassingEvents = numPassing
	wr.numGoalShotEvents = numGoalShot
}

func (wr *Writer) emitGroup(group *sslproto.LabelerFrameGroup) error {
	encoded, err := group.Marshal()
	if err != nil {
		return sslerrors.NewProtoDecodeError("labeler.Writer.emitGroup", err)
	}

	wr.offsets = append(wr.offsets, uint64(wr.pos))

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(encoded)))
	if _, err := wr.w.Write(lenBuf[:]); err != nil {
		return sslerrors.NewIOError("labeler.Writer.emitGroup.length", err)
	}
	if _, err := wr.w.Write(encoded); err != nil {
		return sslerrors.NewIOError("labeler.Writer.emitGroup.body", err)
	}
	wr.pos += int64(len(lenBuf)) + int64(len(encoded))
	return nil
}

// Close performs the final flush of any pending group, serializes the
// metadata record, and appends it with its trailing length word. Safe to
// call more than once; only the first call does anything.
func (wr *Writer) Close() error {
	if wr.closed {
		return nil
	}
	wr.closed = true

	if group, ok := wr.seg.Close(); ok {
		if err := wr.emitGroup(group); err != nil {
			return err
		}
	}

	meta := &sslproto.LabelerMetadata{
		NumCameras:        wr.seg.NumCameras(),
		MessageOffsets:    wr.offsets,
		NumPassingEvents:  wr.numPassingEvents,
		NumGoalShotEvents: wr.numGoalShotEvents,
	}
	metaBytes, err := meta.Marshal()
	if err != nil {
		return sslerrors.NewProtoDecodeError("labeler.Writer.Close.metadata", err)
	}
	if _, err := wr.w.Write(metaBytes); err != nil {
		return sslerrors.NewIOError("labeler.Writer.Close.metadata_body", err)
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(metaBytes)))
	if _, err := wr.w.Write(lenBuf[:]); err != nil {
		return sslerrors.NewIOError("labeler.Writer.Close.metadata_length", err)
	}
	return nil
}

// WithWriter constructs a Writer over w, runs fn, and guarantees Close is
// called on every exit path (including a panic unwinding through fn) before
// returning — the guaranteed-finalization idiom a scoped resource needs in
// a language without destructors.
func WithWriter(w io.Writer, fn func(*Writer) error) (err error) {
	wr, err := Create(w)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wr.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(wr)
}
