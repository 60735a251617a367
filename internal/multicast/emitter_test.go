package multicast

import (
	"net"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.RefereeAddr != DefaultRefereeAddr || cfg.RefereePort != DefaultRefereePort {
		t.Fatalf("unexpected referee defaults: %+v", cfg)
	}
	if cfg.VisionAddr != DefaultVisionAddr || cfg.VisionPort != DefaultVisionPort {
		t.Fatalf("unexpected vision defaults: %+v", cfg)
	}
}

func TestConfigOverridesPreserved(t *testing.T) {
	cfg := Config{RefereeAddr: "127.0.0.1", RefereePort: 9001}.withDefaults()
	if cfg.RefereeAddr != "127.0.0.1" || cfg.RefereePort != 9001 {
		t.Fatalf("override not preserved: %+v", cfg)
	}
	if cfg.VisionAddr != DefaultVisionAddr {
		t.Fatalf("unrelated field should still take its default: %+v", cfg)
	}
}

// TestSendReferee exercises the datagram path against a loopback listener
// standing in for a multicast group member, since the test environment may
// not route real multicast traffic.
func TestSendReferee(t *testing.T) {
	listener, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer listener.Close()

	port := listener.LocalAddr().(*net.UDPAddr).Port
	e, err := New(Config{RefereeAddr: "127.0.0.1", RefereePort: port})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := e.SendReferee(want); err != nil {
		t.Fatalf("SendReferee: %v", err)
	}

	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	if string(buf[:n]) != string(want) {
		t.Fatalf("datagram mismatch: got %v want %v", buf[:n], want)
	}
}
