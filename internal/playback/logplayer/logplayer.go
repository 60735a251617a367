// Package logplayer replays a raw capture log in wall-clock time (optionally
// time-scaled), emitting referee and vision datagrams onto a multicast
// emitter while a running stage is active.
package logplayer

import (
	"time"

	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
	"github.com/robocup-ssl/ssl-log-tools/internal/multicast"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog/message"
	"github.com/robocup-ssl/ssl-log-tools/internal/sslproto"
)

// Clock abstracts wall-clock access so pacing can be driven by a fake clock
// in tests instead of real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time      { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Play consumes rd once, dispatching referee and vision records onto em
// while a running stage is active, paced to wall-clock time scaled by
// speed (1.0 = real time). Non-running spans are skipped without pacing.
// Socket send failures are logged and do not abort playback.
func Play(rd *ssllog.Reader, em *multicast.Emitter, speed float64) error {
	return play(rd, em, speed, realClock{})
}

func play(rd *ssllog.Reader, em *multicast.Emitter, speed float64, clk Clock) error {
	var stage *sslproto.Stage
	var started bool
	var startWall time.Time
	var refTs int64

	return rd.Each(func(msg *message.Message) error {
		if msg.Payload.Tag == message.TagRefbox2013 {
			wasRunning := stage != nil && stage.Running()
			newStage := msg.Payload.Referee.Stage
			stage = &newStage
			if wasRunning && !newStage.Running() {
				started = false
			}
		}

		if stage == nil || !stage.Running() {
			return nil
		}

		if !started {
			startWall = clk.Now()
			refTs = msg.TimestampNs
			started = true
		} else {
			elapsedReal := clk.Now().Sub(startWall)
			elapsedSched := time.Duration(float64(msg.TimestampNs-refTs) / speed)
			if elapsedSched > elapsedReal {
				clk.Sleep(elapsedSched - elapsedReal)
			}
		}

		dispatch(em, msg)
		return nil
	})
}

func dispatch(em *multicast.Emitter, msg *message.Message) {
	switch msg.Payload.Tag {
	case message.TagRefbox2013:
		b, err := msg.Payload.Referee.Marshal()
		if err != nil {
			logger.Warn("logplayer: failed to re-encode referee frame", "error", err)
			return
		}
		if err := em.SendReferee(b); err != nil {
			logger.Warn("logplayer: referee send failed", "error", err)
		}
	case message.TagVision2014:
		b, err := msg.Payload.Vision.Marshal()
		if err != nil {
			logger.Warn("logplayer: failed to re-encode vision frame", "error", err)
			return
		}
		if err := em.SendVision(b); err != nil {
			logger.Warn("logplayer: vision send failed", "error", err)
		}
	default:
		logger.Debug("logplayer: skipping non-dispatchable record", "tag", msg.Payload.Tag)
	}
}
