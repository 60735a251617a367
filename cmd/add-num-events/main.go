// Command add-num-events performs the one supported in-place mutation of a
// labeler archive: setting num_passing_events and num_goal_shot_events in
// its trailing metadata footer, per the narrow metadata-rewrite operation
// this module's Non-goals explicitly carve back in.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/robocup-ssl/ssl-log-tools/internal/labeler"
	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
)

func main() {
	fs := flag.NewFlagSet("add-num-events", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	numPassing := fs.Uint("passing", 0, "num_passing_events to record")
	numGoalShot := fs.Uint("goal-shot", 0, "num_goal_shot_events to record")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: add-num-events -passing <n> -goal-shot <n> <path.labeler>")
		os.Exit(2)
	}
	path := fs.Arg(0)

	logger.Init()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		logger.Error("add-num-events: open failed", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := labeler.RewriteEventCounts(f, uint32(*numPassing), uint32(*numGoalShot)); err != nil {
		logger.Error("add-num-events: rewrite failed", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("add-num-events: metadata rewritten", "path", path, "num_passing_events", *numPassing, "num_goal_shot_events", *numGoalShot)
}
