// Command print-labeler-metadata opens a labeler archive and prints its
// trailing metadata: camera count, frame-group count, and the two event
// counters. A read-only diagnostic grounded on C5's exposed accessors.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/robocup-ssl/ssl-log-tools/internal/labeler"
	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
)

func main() {
	fs := flag.NewFlagSet("print-labeler-metadata", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: print-labeler-metadata <path.labeler>")
		os.Exit(2)
	}
	path := fs.Arg(0)

	logger.Init()

	f, err := os.Open(path)
	if err != nil {
		logger.Error("print-labeler-metadata: open failed", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	rd, err := labeler.Open(f)
	if err != nil {
		logger.Error("print-labeler-metadata: opening archive failed", "path", path, "error", err)
		os.Exit(1)
	}

	fmt.Printf("num_cameras: %d\n", rd.NumCameras())
	fmt.Printf("num_frame_groups: %d\n", rd.Len())
	fmt.Printf("num_passing_events: %d\n", rd.NumPassingEvents())
	fmt.Printf("num_goal_shot_events: %d\n", rd.NumGoalShotEvents())
}
