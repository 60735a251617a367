// Package labeler implements the derived, seek-indexed archive built from a
// raw capture log: the frame-group segmenter (this file), the writer, and
// the reader.
package labeler

import (
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog/message"
	"github.com/robocup-ssl/ssl-log-tools/internal/sslproto"
)

// Segmenter is the frame-group state machine driven by a raw log's record
// stream. It groups referee and vision records arriving during a running
// stage into labeler frame groups, discarding everything outside a running
// stage. Zero value is ready to use.
type Segmenter struct {
	currentStage *sslproto.Stage
	pending      []*sslproto.LabelerFrame
	camerasSeen  map[uint32]bool
	numCameras   uint32
}

// Feed processes one decoded log record. It returns the frame group flushed
// as a side effect of this record (a referee stage change or a repeated
// camera id within the pending group), or (nil, false) if nothing flushed.
func (s *Segmenter) Feed(msg *message.Message) (*sslproto.LabelerFrameGroup, bool) {
	switch msg.Payload.Tag {
	case message.TagRefbox2013:
		return s.feedReferee(msg)
	case message.TagVision2014:
		return s.feedVision(msg)
	default:
		return nil, false
	}
}

func (s *Segmenter) feedReferee(msg *message.Message) (*sslproto.LabelerFrameGroup, bool) {
	newStage := msg.Payload.Referee.Stage

	var flushed *sslproto.LabelerFrameGroup
	var didFlush bool
	if s.currentStage == nil || *s.currentStage != newStage {
		flushed, didFlush = s.flush()
		stage := newStage
		s.currentStage = &stage
	}

	if newStage.Running() {
		s.pending = append(s.pending, &sslproto.LabelerFrame{
			Timestamp:    uint64(msg.TimestampNs),
			RefereeFrame: msg.Payload.Referee,
		})
	}

	return flushed, didFlush
}

func (s *Segmenter) feedVision(msg *message.Message) (*sslproto.LabelerFrameGroup, bool) {
	if s.currentStage == nil || !s.currentStage.Running() {
		return nil, false
	}

	cam := msg.Payload.Vision.Detection.CameraID

	var flushed *sslproto.LabelerFrameGroup
	var didFlush bool
	if s.camerasSeen[cam] {
		flushed, didFlush = s.flush()
	}

	s.pending = append(s.pending, &sslproto.LabelerFrame{
		Timestamp:   uint64(msg.TimestampNs),
		VisionFrame: msg.Payload.Vision,
	})
	if s.camerasSeen == nil {
		s.camerasSeen = make(map[uint32]bool)
	}
	s.camerasSeen[cam] = true

	if cam+1 > s.numCameras {
		s.numCameras = cam + 1
	}

	return flushed, didFlush
}

// Close performs the final flush on stream end, returning the last pending
// group if one exists.
func (s *Segmenter) Close() (*sslproto.LabelerFrameGroup, bool) {
	return s.flush()
}

func (s *Segmenter) flush() (*sslproto.LabelerFrameGroup, bool) {
	if len(s.pending) == 0 {
		return nil, false
	}
	group := &sslproto.LabelerFrameGroup{Frames: s.pending}
	s.pending = nil
	s.camerasSeen = nil
	return group, true
}

// NumCameras returns the highest camera count observed so far, tracked as
// 1 + max(camera_id) across the whole pass.
func (s *Segmenter) NumCameras() uint32 {
	return s.numCameras
}
