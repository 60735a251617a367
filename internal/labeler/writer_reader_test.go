package labeler

import (
	"errors"
	"io"
	"testing"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog/message"
	"github.com/robocup-ssl/ssl-log-tools/internal/sslproto"
)

// memSeeker is a minimal in-memory io.ReadWriteSeeker for exercising the
// writer/reader pair without touching a real file.
type memSeeker struct {
	buf []byte
	pos int64
}

func (m *memSeeker) Write(p []byte) (int, error) {
	if m.pos < int64(len(m.buf)) {
		copy(m.buf[m.pos:], p)
		if extra := m.pos + int64(len(p)) - int64(len(m.buf)); extra > 0 {
			m.buf = append(m.buf, p[int64(len(p))-extra:]...)
		}
	} else {
		m.buf = append(m.buf, p...)
	}
	m.pos += int64(len(p))
	return len(p), nil
}

func (m *memSeeker) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = int64(len(m.buf))
	}
	m.pos = base + offset
	return m.pos, nil
}

// TestWriterReaderEmptyArchive mirrors scenario S1's archive half.
func TestWriterReaderEmptyArchive(t *testing.T) {
	mem := &memSeeker{}
	wr, err := Create(mem)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := wr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mem.pos = 0
	rd, err := Open(mem)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if rd.Len() != 0 {
		t.Fatalf("expected len()==0, got %d", rd.Len())
	}
	if rd.NumCameras() != 0 {
		t.Fatalf("expected num_cameras()==0, got %d", rd.NumCameras())
	}
}

// TestWriterReaderRandomAccess mirrors P11: a written archive's groups are
// recovered in order via Get with their expected frame counts, and
// num_cameras matches.
func TestWriterReaderRandomAccess(t *testing.T) {
	mem := &memSeeker{}
	wr, err := Create(mem)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	feeds := []*message.Message{
		{TimestampNs: 100, Payload: message.Payload{Tag: message.TagRefbox2013, Referee: &sslproto.RefereeMsg{Stage: sslproto.StageNormalFirstHalf}}},
		{TimestampNs: 101, Payload: message.Payload{Tag: message.TagVision2014, Vision: &sslproto.WrapperMsg{Detection: sslproto.DetectionFrame{CameraID: 0}}}},
		{TimestampNs: 102, Payload: message.Payload{Tag: message.TagVision2014, Vision: &sslproto.WrapperMsg{Detection: sslproto.DetectionFrame{CameraID: 1}}}},
		{TimestampNs: 103, Payload: message.Payload{Tag: message.TagVision2014, Vision: &sslproto.WrapperMsg{Detection: sslproto.DetectionFrame{CameraID: 0}}}}, // triggers flush
		{TimestampNs: 104, Payload: message.Payload{Tag: message.TagVision2014, Vision: &sslproto.WrapperMsg{Detection: sslproto.DetectionFrame{CameraID: 2}}}},
	}
	for _, m := range feeds {
		if err := wr.AddMsg(m); err != nil {
			t.Fatalf("AddMsg: %v", err)
		}
	}
	if err := wr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mem.pos = 0
	rd, err := Open(mem)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if rd.Len() != 2 {
		t.Fatalf("expected 2 groups, got %d", rd.Len())
	}
	if rd.NumCameras() != 3 {
		t.Fatalf("expected num_cameras()==3, got %d", rd.NumCameras())
	}

	g0, err := rd.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if len(g0.Frames) != 3 {
		t.Fatalf("group 0: expected 3 frames, got %d", len(g0.Frames))
	}

	g1, err := rd.Get(1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if len(g1.Frames) != 2 {
		t.Fatalf("group 1: expected 2 frames, got %d", len(g1.Frames))
	}

	if g, err := rd.Get(2); err != nil || g != nil {
		t.Fatalf("expected (nil, nil) for an out-of-range index, got (%+v, %v)", g, err)
	}
}

func TestWriterReaderIterationIsRestartable(t *testing.T) {
	mem := &memSeeker{}
	wr, err := Create(mem)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	feeds := []*message.Message{
		{TimestampNs: 1, Payload: message.Payload{Tag: message.TagRefbox2013, Referee: &sslproto.RefereeMsg{Stage: sslproto.StageNormalFirstHalf}}},
		{TimestampNs: 2, Payload: message.Payload{Tag: message.TagVision2014, Vision: &sslproto.WrapperMsg{Detection: sslproto.DetectionFrame{CameraID: 0}}}},
		{TimestampNs: 3, Payload: message.Payload{Tag: message.TagRefbox2013, Referee: &sslproto.RefereeMsg{Stage: sslproto.StageNormalHalfTime}}},
	}
	for _, m := range feeds {
		if err := wr.AddMsg(m); err != nil {
			t.Fatalf("AddMsg: %v", err)
		}
	}
	if err := wr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mem.pos = 0
	rd, err := Open(mem)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for pass := 0; pass < 2; pass++ {
		it := rd.Iterator()
		count := 0
		for {
			g, err := it.Next()
			if err != nil {
				t.Fatalf("pass %d: Next: %v", pass, err)
			}
			if g == nil {
				break
			}
			count++
		}
		if count != rd.Len() {
			t.Fatalf("pass %d: expected %d groups, got %d", pass, rd.Len(), count)
		}
	}
}

func TestOpenRejectsBadHeader(t *testing.T) {
	mem := &memSeeker{buf: []byte("NOT_A_LABELER_FILEXXXX")}
	_, err := Open(mem)
	var ihe *sslerrors.InvalidHeaderError
	if !errors.As(err, &ihe) {
		t.Fatalf("expected InvalidHeaderError, got %T: %v", err, err)
	}
}

func TestWithWriterClosesOnNormalReturn(t *testing.T) {
	mem := &memSeeker{}
	err := WithWriter(mem, func(wr *Writer) error {
		return wr.AddMsg(&message.Message{
			TimestampNs: 1,
			Payload:     message.Payload{Tag: message.TagRefbox2013, Referee: &sslproto.RefereeMsg{Stage: sslproto.StageNormalFirstHalf}},
		})
	})
	if err != nil {
		t.Fatalf("WithWriter: %v", err)
	}

	mem.pos = 0
	rd, err := Open(mem)
	if err != nil {
		t.Fatalf("Open after WithWriter: %v", err)
	}
	if rd.Len() != 1 {
		t.Fatalf("expected the pending group to be flushed by the deferred Close, got len()=%d", rd.Len())
	}
}
