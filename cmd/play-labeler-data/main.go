// Command play-labeler-data drives a labeler archive onto multicast under
// interactive control: a thin CLI wrapper around
// internal/playback/labelplayer that reads commands from stdin, mirroring
// the original implementation's label-data-player widget's command
// vocabulary without the GUI: play, reverse, pause, speed <n>, seek <i>,
// state and quit.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robocup-ssl/ssl-log-tools/internal/config"
	"github.com/robocup-ssl/ssl-log-tools/internal/labeler"
	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
	"github.com/robocup-ssl/ssl-log-tools/internal/multicast"
	"github.com/robocup-ssl/ssl-log-tools/internal/playback/labelplayer"
)

func main() {
	fs := flag.NewFlagSet("play-labeler-data", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	refereeAddr := fs.String("referee-addr", config.StringEnv(config.EnvRefereeAddr, multicast.DefaultRefereeAddr), "referee multicast group address")
	refereePort := fs.Int("referee-port", config.IntEnv(config.EnvRefereePort, multicast.DefaultRefereePort), "referee multicast group port")
	visionAddr := fs.String("vision-addr", config.StringEnv(config.EnvVisionAddr, multicast.DefaultVisionAddr), "vision multicast group address")
	visionPort := fs.Int("vision-port", config.IntEnv(config.EnvVisionPort, multicast.DefaultVisionPort), "vision multicast group port")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: play-labeler-data [flags] <path.labeler>")
		os.Exit(2)
	}
	path := fs.Arg(0)

	logger.Init()

	f, err := os.Open(path)
	if err != nil {
		logger.Error("play-labeler-data: open failed", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	rd, err := labeler.Open(f)
	if err != nil {
		logger.Error("play-labeler-data: opening archive failed", "path", path, "error", err)
		os.Exit(1)
	}

	em, err := multicast.New(multicast.Config{
		RefereeAddr: *refereeAddr,
		RefereePort: *refereePort,
		VisionAddr:  *visionAddr,
		VisionPort:  *visionPort,
	})
	if err != nil {
		logger.Error("play-labeler-data: constructing emitter failed", "error", err)
		os.Exit(1)
	}
	defer em.Close()

	h := labelplayer.Start(rd, em)
	defer h.Stop()

	fmt.Printf("%d frame groups loaded; commands: play, pause, reverse, speed <n>, seek <i>, state, quit\n", rd.Len())
	runCommandLoop(h)
}

func runCommandLoop(h *labelplayer.Handle) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "play":
			h.SetPlayState(labelplayer.Forward)
		case "reverse":
			h.SetPlayState(labelplayer.Backward)
		case "pause":
			h.SetPlayState(labelplayer.Paused)
		case "speed":
			if len(fields) != 2 {
				fmt.Println("usage: speed <n>")
				continue
			}
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil || v <= 0 {
				fmt.Println("speed must be a positive number")
				continue
			}
			h.SetPlaybackSpeed(v)
		case "seek":
			if len(fields) != 2 {
				fmt.Println("usage: seek <i>")
				continue
			}
			i, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("seek index must be an integer")
				continue
			}
			h.SetFrame(i)
		case "state":
			st := h.GetState()
			fmt.Printf("play_state=%s speed=%.2f current_frame=%d\n", st.PlayState, st.PlaybackSpeed, st.CurrentFrame)
		case "quit":
			return
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}
