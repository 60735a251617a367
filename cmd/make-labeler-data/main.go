// Command make-labeler-data drives a single capture log through C2 → C3 →
// C4, producing a labeler archive at an explicit output path.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
	"github.com/robocup-ssl/ssl-log-tools/internal/watch"
)

func main() {
	fs := flag.NewFlagSet("make-labeler-data", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	out := fs.String("out", "", "output archive path (defaults to the input path with its extension replaced by .labeler)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: make-labeler-data [-out path.labeler] <path.log>")
		os.Exit(2)
	}
	logPath := fs.Arg(0)
	archivePath := *out
	if archivePath == "" {
		archivePath = watch.ArchivePathFor(logPath)
	}

	logger.Init()

	if err := watch.ProcessLogFile(logPath, archivePath); err != nil {
		logger.Error("make-labeler-data: processing failed", "log", logPath, "archive", archivePath, "error", err)
		os.Exit(1)
	}
	logger.Info("make-labeler-data: archive written", "log", logPath, "archive", archivePath)
}
