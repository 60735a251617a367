package labeler

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
	"github.com/robocup-ssl/ssl-log-tools/internal/sslproto"
)

// RewriteEventCounts performs the one supported in-place mutation of a
// labeler archive: it reads the trailing metadata footer, updates the two
// event counters, re-encodes the metadata protobuf, and writes
// metadata_bytes||uint32 BE len back starting at the *old* footer's start
// offset.
//
// Every reader locates the footer by walking backward from the current
// end, so the archive must end exactly at the newly written length word.
// If the re-encoded metadata is shorter than the original, rws is cut back
// to that point through its Truncate(int64) error method (true of
// *os.File); an rws without one is rejected with an IOError before
// anything is written. If longer, the underlying writer is simply
// extended; rws must support writing past its previous end-of-file (true
// of *os.File).
func RewriteEventCounts(rws io.ReadWriteSeeker, numPassing, numGoalShot uint32) error {
	header := make([]byte, len(DataHeader))
	if _, err := rws.Seek(0, io.SeekStart); err != nil {
		return sslerrors.NewIOError("labeler.RewriteEventCounts.seek_start", err)
	}
	if _, err := io.ReadFull(rws, header); err != nil {
		return sslerrors.NewUnexpectedEndError("labeler.RewriteEventCounts.header", err)
	}
	if !bytes.Equal(header, DataHeader) {
		return sslerrors.NewInvalidHeaderError("labeler.RewriteEventCounts", DataHeader, header)
	}

	end, err := rws.Seek(0, io.SeekEnd)
	if err != nil {
		return sslerrors.NewIOError("labeler.RewriteEventCounts.seek_end", err)
	}

	if _, err := rws.Seek(end-4, io.SeekStart); err != nil {
		return sslerrors.NewIOError("labeler.RewriteEventCounts.seek_length_word", err)
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(rws, lenBuf[:]); err != nil {
		return sslerrors.NewUnexpectedEndError("labeler.RewriteEventCounts.metadata_length", err)
	}
	oldLen := int64(binary.BigEndian.Uint32(lenBuf[:]))
	metaStart := end - 4 - oldLen

	if _, err := rws.Seek(metaStart, io.SeekStart); err != nil {
		return sslerrors.NewIOError("labeler.RewriteEventCounts.seek_metadata", err)
	}
	oldBytes := make([]byte, oldLen)
	if _, err := io.ReadFull(rws, oldBytes); err != nil {
		return sslerrors.NewUnexpectedEndError("labeler.RewriteEventCounts.metadata_body", err)
	}

	meta, err := sslproto.UnmarshalLabelerMetadata(oldBytes)
	if err != nil {
		return err
	}
	meta.NumPassingEvents = numPassing
	meta.NumGoalShotEvents = numGoalShot

	newBytes, err := meta.Marshal()
	if err != nil {
		return sslerrors.NewProtoDecodeError("labeler.RewriteEventCounts.metadata", err)
	}

	newLen := int64(len(newBytes))
	truncater, canTruncate := rws.(interface{ Truncate(size int64) error })
	if newLen < oldLen && !canTruncate {
		return sslerrors.NewIOError("labeler.RewriteEventCounts.shrink", errors.New("shorter metadata needs a truncatable archive"))
	}

	if _, err := rws.Seek(metaStart, io.SeekStart); err != nil {
		return sslerrors.NewIOError("labeler.RewriteEventCounts.seek_rewrite", err)
	}
	if _, err := rws.Write(newBytes); err != nil {
		return sslerrors.NewIOError("labeler.RewriteEventCounts.write_metadata", err)
	}
	var newLenBuf [4]byte
	binary.BigEndian.PutUint32(newLenBuf[:], uint32(len(newBytes)))
	if _, err := rws.Write(newLenBuf[:]); err != nil {
		return sslerrors.NewIOError("labeler.RewriteEventCounts.write_length", err)
	}
	if newLen < oldLen {
		if err := truncater.Truncate(metaStart + newLen + 4); err != nil {
			return sslerrors.NewIOError("labeler.RewriteEventCounts.truncate", err)
		}
	}
	return nil
}
