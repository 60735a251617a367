// Command watch-capture watches a directory for newly-closed capture logs
// and automatically runs each one through the C2 → C3 → C4 pipeline,
// optionally publishing the resulting archive to Azure Blob Storage. Not
// present in the original implementation, which always runs its GUI
// manually against a chosen file; this wraps internal/watch's directory
// watcher for an unattended capture-box deployment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robocup-ssl/ssl-log-tools/internal/config"
	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
	"github.com/robocup-ssl/ssl-log-tools/internal/publish"
	"github.com/robocup-ssl/ssl-log-tools/internal/watch"
)

func main() {
	fs := flag.NewFlagSet("watch-capture", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	dir := fs.String("dir", config.StringEnv(config.EnvWatchDir, "."), "directory to watch for closed .log captures")
	containerURL := fs.String("azure-container-url", config.StringEnv(config.EnvAzureContainerURL, ""), "Azure Blob service URL to publish finished archives to (empty disables publishing)")
	containerName := fs.String("azure-container-name", config.StringEnv(config.EnvAzureContainerName, "matches"), "Azure Blob container name")
	publishTimeout := fs.Int("azure-publish-timeout-seconds", config.IntEnv(config.EnvAzurePublishDelay, 120), "per-upload timeout in seconds")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	logger.Init()

	var pub *publish.Publisher
	if *containerURL != "" {
		p, err := publish.New(publish.Config{
			ServiceURL:    *containerURL,
			ContainerName: *containerName,
			UploadTimeout: time.Duration(*publishTimeout) * time.Second,
		})
		if err != nil {
			logger.Error("watch-capture: constructing publisher failed", "error", err)
			os.Exit(1)
		}
		pub = p
	}

	w, err := watch.New(*dir, watch.DefaultQuietPeriod)
	if err != nil {
		logger.Error("watch-capture: starting watcher failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
	defer w.Close()

	if pub != nil {
		w.OnProcessed = func(archivePath string) {
			if err := pub.UploadArchive(context.Background(), archivePath, ""); err != nil {
				logger.Warn("watch-capture: publishing archive failed", "archive", archivePath, "error", err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopWatch := make(chan struct{})
	done := make(chan struct{})
	go func() {
		w.Run(stopWatch)
		close(done)
	}()

	fmt.Printf("watching %s for closed .log captures\n", *dir)
	<-ctx.Done()
	close(stopWatch)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("watch-capture: watcher did not stop within grace period")
	}
}
