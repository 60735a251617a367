// Package labelplayer drives a labeler archive's frame groups onto a
// multicast emitter under external command: a background worker goroutine
// stepping through frame groups at a configurable speed, paused, or idle,
// while a client-side Handle issues commands and polls state.
package labelplayer

import (
	"sync"
	"time"

	"github.com/robocup-ssl/ssl-log-tools/internal/labeler"
	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
	"github.com/robocup-ssl/ssl-log-tools/internal/multicast"
)

// PlayState is the worker's stepping direction.
type PlayState int

const (
	Paused PlayState = iota
	Forward
	Backward
)

func (p PlayState) String() string {
	switch p {
	case Paused:
		return "paused"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unknown"
	}
}

type commandKind int

const (
	cmdStop commandKind = iota
	cmdGetState
	cmdSetPlayState
	cmdSetPlaybackSpeed
	cmdSetFrame
)

type command struct {
	kind      commandKind
	playState PlayState
	speed     float64
	frame     int
}

// State is a snapshot of the worker's stepping state, as returned by
// Handle.GetState.
type State struct {
	PlayState     PlayState
	PlaybackSpeed float64
	CurrentFrame  int
}

// commandQueue is an unbounded, FIFO, non-blocking-receive queue: the
// worker's tryRecv never blocks, matching the background loop's
// non-blocking drain-one-per-tick contract.
type commandQueue struct {
	mu    sync.Mutex
	items []command
}

func (q *commandQueue) send(c command) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()
}

func (q *commandQueue) tryRecv() (command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return command{}, false
	}
	c := q.items[0]
	q.items = q.items[1:]
	return c, true
}

const basestepPeriod = 16 * time.Millisecond

// Handle is the client-side reference to a running worker. The zero value
// is not usable; construct with Start.
type Handle struct {
	commands *commandQueue
	state    chan State
	done     chan struct{}
}

// Start spawns the background worker over rd, emitting through em, and
// returns a handle to it. Initial state is Paused, frame 0, speed 1.0.
func Start(rd *labeler.Reader, em *multicast.Emitter) *Handle {
	h := &Handle{
		commands: &commandQueue{},
		state:    make(chan State, 1),
		done:     make(chan struct{}),
	}
	go h.run(rd, em)
	return h
}

// SetPlayState changes the worker's stepping direction.
func (h *Handle) SetPlayState(p PlayState) {
	h.commands.send(command{kind: cmdSetPlayState, playState: p})
}

// SetPlaybackSpeed changes the worker's step period (step_period =
// 16ms / speed). speed must be positive.
func (h *Handle) SetPlaybackSpeed(speed float64) {
	h.commands.send(command{kind: cmdSetPlaybackSpeed, speed: speed})
}

// SetFrame both updates current_frame (clamped to [0, len)) and
// immediately emits that frame group.
func (h *Handle) SetFrame(i int) {
	h.commands.send(command{kind: cmdSetFrame, frame: i})
}

// GetState sends a GetState command and blocks for the worker's reply.
// The reply reflects the worker's state after processing every command
// sent before this one.
func (h *Handle) GetState() State {
	h.commands.send(command{kind: cmdGetState})
	return <-h.state
}

// Stop requests the worker exit and waits for it to do so. The worker is
// guaranteed to observe this within one 1ms tick plus at most one
// in-flight send.
func (h *Handle) Stop() {
	h.commands.send(command{kind: cmdStop})
	<-h.done
}

func (h *Handle) run(rd *labeler.Reader, em *multicast.Emitter) {
	defer close(h.done)

	st := State{PlayState: Paused, PlaybackSpeed: 1.0, CurrentFrame: 0}
	stepPeriod := basestepPeriod
	var lastStepWall time.Time
	var lastStepSet bool

	for {
		if cmd, ok := h.commands.tryRecv(); ok {
			switch cmd.kind {
			case cmdStop:
				return
			case cmdGetState:
				select {
				case h.state <- st:
				default:
				}
			case cmdSetPlayState:
				st.PlayState = cmd.playState
			case cmdSetPlaybackSpeed:
				if cmd.speed > 0 {
					st.PlaybackSpeed = cmd.speed
					stepPeriod = time.Duration(float64(basestepPeriod) / cmd.speed)
				}
			case cmdSetFrame:
				st.CurrentFrame = clampIndex(cmd.frame, rd.Len())
				step(em, rd, st.CurrentFrame)
			}
		}

		switch st.PlayState {
		case Paused:
			lastStepSet = false
		case Forward:
			if !lastStepSet {
				step(em, rd, st.CurrentFrame)
				lastStepWall = time.Now()
				lastStepSet = true
			} else if time.Since(lastStepWall) >= stepPeriod {
				st.CurrentFrame = minInt(st.CurrentFrame+1, rd.Len())
				step(em, rd, st.CurrentFrame)
				lastStepWall = time.Now()
			}
		case Backward:
			if !lastStepSet {
				step(em, rd, st.CurrentFrame)
				lastStepWall = time.Now()
				lastStepSet = true
			} else if time.Since(lastStepWall) >= stepPeriod {
				st.CurrentFrame = maxInt(st.CurrentFrame-1, 0)
				step(em, rd, st.CurrentFrame)
				lastStepWall = time.Now()
			}
		}

		time.Sleep(time.Millisecond)
	}
}

// step fetches group i and dispatches each of its frames to the emitter.
// A missing group (out of range) is skipped silently; a fetch, re-encode
// or send failure is logged and skipped. Playback is never aborted.
func step(em *multicast.Emitter, rd *labeler.Reader, i int) {
	group, err := rd.Get(i)
	if err != nil {
		logger.Warn("labelplayer: failed to fetch frame group", "index", i, "error", err)
		return
	}
	if group == nil {
		return
	}
	for _, frame := range group.Frames {
		switch {
		case frame.RefereeFrame != nil:
			b, err := frame.RefereeFrame.Marshal()
			if err != nil {
				logger.Warn("labelplayer: referee re-encode failed", "error", err)
				continue
			}
			if err := em.SendReferee(b); err != nil {
				logger.Warn("labelplayer: referee send failed", "error", err)
			}
		case frame.VisionFrame != nil:
			b, err := frame.VisionFrame.Marshal()
			if err != nil {
				logger.Warn("labelplayer: vision re-encode failed", "error", err)
				continue
			}
			if err := em.SendVision(b); err != nil {
				logger.Warn("labelplayer: vision send failed", "error", err)
			}
		default:
			logger.Debug("labelplayer: frame carries neither referee nor vision payload, skipping")
		}
	}
}

// clampIndex clamps i to [0, length) for a direct SetFrame request; an
// empty archive always clamps to 0.
func clampIndex(i, length int) int {
	if length <= 0 {
		return 0
	}
	return maxInt(0, minInt(i, length-1))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
