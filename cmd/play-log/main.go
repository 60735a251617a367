// Command play-log replays a capture log in wall-clock time (optionally
// scaled), emitting referee and vision datagrams onto multicast while a
// running stage is active. A thin CLI wrapper around
// internal/playback/logplayer.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/robocup-ssl/ssl-log-tools/internal/config"
	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
	"github.com/robocup-ssl/ssl-log-tools/internal/multicast"
	"github.com/robocup-ssl/ssl-log-tools/internal/playback/logplayer"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog"
)

func main() {
	fs := flag.NewFlagSet("play-log", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	refereeAddr := fs.String("referee-addr", config.StringEnv(config.EnvRefereeAddr, multicast.DefaultRefereeAddr), "referee multicast group address")
	refereePort := fs.Int("referee-port", config.IntEnv(config.EnvRefereePort, multicast.DefaultRefereePort), "referee multicast group port")
	visionAddr := fs.String("vision-addr", config.StringEnv(config.EnvVisionAddr, multicast.DefaultVisionAddr), "vision multicast group address")
	visionPort := fs.Int("vision-port", config.IntEnv(config.EnvVisionPort, multicast.DefaultVisionPort), "vision multicast group port")
	speed := fs.Float64("speed", config.FloatEnv(config.EnvPlaybackSpeed, 1.0), "playback speed multiplier (1.0 = real time)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: play-log [flags] <path.log>")
		os.Exit(2)
	}
	path := fs.Arg(0)
	if *speed <= 0 {
		fmt.Fprintln(os.Stderr, "-speed must be positive")
		os.Exit(2)
	}

	logger.Init()

	f, err := os.Open(path)
	if err != nil {
		logger.Error("play-log: open failed", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	rd, err := ssllog.Open(f)
	if err != nil {
		logger.Error("play-log: opening log failed", "path", path, "error", err)
		os.Exit(1)
	}

	em, err := multicast.New(multicast.Config{
		RefereeAddr: *refereeAddr,
		RefereePort: *refereePort,
		VisionAddr:  *visionAddr,
		VisionPort:  *visionPort,
	})
	if err != nil {
		logger.Error("play-log: constructing emitter failed", "error", err)
		os.Exit(1)
	}
	defer em.Close()

	if err := logplayer.Play(rd, em, *speed); err != nil {
		logger.Error("play-log: playback failed", "path", path, "error", err)
		os.Exit(1)
	}
}
