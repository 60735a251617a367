// Package multicast sends finished referee and vision datagrams onto the
// two well-known SSL multicast groups, bit-identical to what a real field
// radio would have broadcast.
package multicast

import (
	"net"
	"strconv"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
)

// Defaults for the two channels, overridable via Config.
const (
	DefaultRefereeAddr = "224.5.23.1"
	DefaultRefereePort = 10003
	DefaultVisionAddr  = "224.5.23.2"
	DefaultVisionPort  = 10006
)

// Config holds the four overridable addressing options. A zero-value field
// takes its default.
type Config struct {
	RefereeAddr string
	RefereePort int
	VisionAddr  string
	VisionPort  int
}

func (c Config) withDefaults() Config {
	if c.RefereeAddr == "" {
		c.RefereeAddr = DefaultRefereeAddr
	}
	if c.RefereePort == 0 {
		c.RefereePort = DefaultRefereePort
	}
	if c.VisionAddr == "" {
		c.VisionAddr = DefaultVisionAddr
	}
	if c.VisionPort == 0 {
		c.VisionPort = DefaultVisionPort
	}
	return c
}

// Emitter owns two UDP sockets, one per channel, each bound to an ephemeral
// source port on 0.0.0.0 with the outgoing multicast interface left to the
// kernel's own routing decision.
type Emitter struct {
	refereeConn *net.UDPConn
	visionConn  *net.UDPConn
	refereeAddr *net.UDPAddr
	visionAddr  *net.UDPAddr
}

// New creates the two sender sockets per cfg, filling in defaults for any
// option left unset.
func New(cfg Config) (*Emitter, error) {
	cfg = cfg.withDefaults()

	refereeAddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(cfg.RefereeAddr, strconv.Itoa(cfg.RefereePort)))
	if err != nil {
		return nil, sslerrors.NewIOError("multicast.New.resolve_referee", err)
	}
	visionAddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(cfg.VisionAddr, strconv.Itoa(cfg.VisionPort)))
	if err != nil {
		return nil, sslerrors.NewIOError("multicast.New.resolve_vision", err)
	}

	local := &net.UDPAddr{IP: net.IPv4zero, Port: 0}

	refereeConn, err := net.ListenUDP("udp4", local)
	if err != nil {
		return nil, sslerrors.NewIOError("multicast.New.listen_referee", err)
	}
	visionConn, err := net.ListenUDP("udp4", local)
	if err != nil {
		refereeConn.Close()
		return nil, sslerrors.NewIOError("multicast.New.listen_vision", err)
	}

	return &Emitter{
		refereeConn: refereeConn,
		visionConn:  visionConn,
		refereeAddr: refereeAddr,
		visionAddr:  visionAddr,
	}, nil
}

// SendReferee emits b, unframed, to the referee multicast group.
func (e *Emitter) SendReferee(b []byte) error {
	if _, err := e.refereeConn.WriteToUDP(b, e.refereeAddr); err != nil {
		return sslerrors.NewIOError("multicast.Emitter.SendReferee", err)
	}
	return nil
}

// SendVision emits b, unframed, to the vision multicast group.
func (e *Emitter) SendVision(b []byte) error {
	if _, err := e.visionConn.WriteToUDP(b, e.visionAddr); err != nil {
		return sslerrors.NewIOError("multicast.Emitter.SendVision", err)
	}
	return nil
}

// Close releases both sockets.
func (e *Emitter) Close() error {
	err1 := e.refereeConn.Close()
	err2 := e.visionConn.Close()
	if err1 != nil {
		return sslerrors.NewIOError("multicast.Emitter.Close.referee", err1)
	}
	if err2 != nil {
		return sslerrors.NewIOError("multicast.Emitter.Close.vision", err2)
	}
	return nil
}
