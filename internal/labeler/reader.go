package labeler

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
	"github.com/robocup-ssl/ssl-log-tools/internal/sslproto"
)

// Reader gives random access to the frame groups of a labeler archive via
// its trailing metadata index. The underlying source is shared across
// concurrent Get calls and is guarded by a mutex so seek+read pairs never
// interleave.
type Reader struct {
	mu            sync.Mutex
	src           io.ReadSeeker
	firstGroupPos int64
	metadata      *sslproto.LabelerMetadata
}

// Open validates the header/version prelude, locates and decodes the
// trailing metadata footer, then leaves src positioned at the first group.
func Open(src io.ReadSeeker) (*Reader, error) {
	header := make([]byte, len(DataHeader))
	if _, err := io.ReadFull(src, header); err != nil {
		return nil, sslerrors.NewUnexpectedEndError("labeler.Open.header", err)
	}
	if !bytes.Equal(header, DataHeader) {
		return nil, sslerrors.NewInvalidHeaderError("labeler.Open", DataHeader, header)
	}

	var verBuf [4]byte
	if _, err := io.ReadFull(src, verBuf[:]); err != nil {
		return nil, sslerrors.NewUnexpectedEndError("labeler.Open.version", err)
	}
	version := binary.BigEndian.Uint32(verBuf[:])
	if version != DataVersion {
		return nil, sslerrors.NewUnsupportedVersionError("labeler.Open", int64(DataVersion), int64(version))
	}

	p0, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, sslerrors.NewIOError("labeler.Open.tell", err)
	}

	end, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, sslerrors.NewIOError("labeler.Open.seek_end", err)
	}

	if _, err := src.Seek(end-4, io.SeekStart); err != nil {
		return nil, sslerrors.NewIOError("labeler.Open.seek_length_word", err)
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(src, lenBuf[:]); err != nil {
		return nil, sslerrors.NewUnexpectedEndError("labeler.Open.metadata_length", err)
	}
	metadataLen := int64(binary.BigEndian.Uint32(lenBuf[:]))

	if _, err := src.Seek(end-4-metadataLen, io.SeekStart); err != nil {
		return nil, sslerrors.NewIOError("labeler.Open.seek_metadata", err)
	}
	metaBytes := make([]byte, metadataLen)
	if _, err := io.ReadFull(src, metaBytes); err != nil {
		return nil, sslerrors.NewUnexpectedEndError("labeler.Open.metadata_body", err)
	}
	meta, err := sslproto.UnmarshalLabelerMetadata(metaBytes)
	if err != nil {
		return nil, err
	}

	if _, err := src.Seek(p0, io.SeekStart); err != nil {
		return nil, sslerrors.NewIOError("labeler.Open.seek_first_group", err)
	}

	return &Reader{src: src, firstGroupPos: p0, metadata: meta}, nil
}

// Len returns the number of frame groups in the archive.
func (r *Reader) Len() int {
	return len(r.metadata.MessageOffsets)
}

// NumCameras returns the archive-wide camera count from the metadata.
func (r *Reader) NumCameras() uint32 {
	return r.metadata.NumCameras
}

// NumPassingEvents returns the metadata's passing-event counter.
func (r *Reader) NumPassingEvents() uint32 {
	return r.metadata.NumPassingEvents
}

// NumGoalShotEvents returns the metadata's goal-shot-event counter.
func (r *Reader) NumGoalShotEvents() uint32 {
	return r.metadata.NumGoalShotEvents
}

// Get returns the frame group at index i. An out-of-range i returns
// (nil, nil): absence, not an error. A seek or read failure past the
// bounds check is an internal error and is returned as such.
func (r *Reader) Get(i int) (*sslproto.LabelerFrameGroup, error) {
	if i < 0 || i >= r.Len() {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	off := int64(r.metadata.MessageOffsets[i])
	if _, err := r.src.Seek(off, io.SeekStart); err != nil {
		return nil, sslerrors.NewIOError("labeler.Reader.Get.seek", err)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(r.src, lenBuf[:]); err != nil {
		return nil, sslerrors.NewUnexpectedEndError("labeler.Reader.Get.length", err)
	}
	groupLen := binary.BigEndian.Uint32(lenBuf[:])

	body := make([]byte, groupLen)
	if _, err := io.ReadFull(r.src, body); err != nil {
		return nil, sslerrors.NewUnexpectedEndError("labeler.Reader.Get.body", err)
	}

	return sslproto.UnmarshalLabelerFrameGroup(body)
}

// GetRange returns the frame groups in [a, b). An out-of-bounds range
// returns (nil, nil).
func (r *Reader) GetRange(a, b int) ([]*sslproto.LabelerFrameGroup, error) {
	if a < 0 || b > r.Len() || a > b {
		return nil, nil
	}
	groups := make([]*sslproto.LabelerFrameGroup, 0, b-a)
	for i := a; i < b; i++ {
		g, err := r.Get(i)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Iterator yields frame groups 0..Len() in order. It is restartable by
// constructing a new one via Reader.Iterator.
type Iterator struct {
	r   *Reader
	idx int
}

// Iterator returns a fresh, restartable iterator over r's frame groups.
func (r *Reader) Iterator() *Iterator {
	return &Iterator{r: r}
}

// Next returns the next frame group, or (nil, nil) once the iterator is
// exhausted.
func (it *Iterator) Next() (*sslproto.LabelerFrameGroup, error) {
	if it.idx >= it.r.Len() {
		return nil, nil
	}
	g, err := it.r.Get(it.idx)
	if err != nil {
		return nil, err
	}
	it.idx++
	return g, nil
}
