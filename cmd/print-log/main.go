// Command print-log opens a capture log and prints one line per record:
// its timestamp, tag, and a short payload summary. The simplest possible
// consumer of the log codec, useful as a smoke test for C2 itself.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog/message"
)

func main() {
	fs := flag.NewFlagSet("print-log", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: print-log <path.log>")
		os.Exit(2)
	}
	path := fs.Arg(0)

	logger.Init()

	f, err := os.Open(path)
	if err != nil {
		logger.Error("print-log: open failed", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	rd, err := ssllog.Open(f)
	if err != nil {
		logger.Error("print-log: opening log failed", "path", path, "error", err)
		os.Exit(1)
	}

	index := int64(0)
	err = rd.Each(func(msg *message.Message) error {
		fmt.Printf("%d\t%s\t%s\n", msg.TimestampNs, tagName(msg.Payload.Tag), summarize(&msg.Payload))
		index++
		return nil
	})
	if err != nil {
		logger.Error("print-log: iteration failed", "path", path, "record_index", index, "error", err)
		os.Exit(1)
	}
}

func tagName(tag int32) string {
	switch tag {
	case message.TagBlank:
		return "blank"
	case message.TagVision2010:
		return "vision2010"
	case message.TagRefbox2013:
		return "refbox2013"
	case message.TagVision2014:
		return "vision2014"
	default:
		return "unknown"
	}
}

func summarize(p *message.Payload) string {
	switch {
	case p.Referee != nil:
		return fmt.Sprintf("stage=%s command_counter=%d", p.Referee.Stage, p.Referee.CommandCounter)
	case p.Vision != nil:
		return fmt.Sprintf("camera=%d frame=%d balls=%d", p.Vision.Detection.CameraID, p.Vision.Detection.FrameNumber, len(p.Vision.Detection.Balls))
	default:
		return fmt.Sprintf("raw_bytes=%d", len(p.RawBytes))
	}
}
