package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/robocup-ssl/ssl-log-tools/internal/labeler"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog/message"
	"github.com/robocup-ssl/ssl-log-tools/internal/sslproto"
)

func TestArchivePathForReplacesExtension(t *testing.T) {
	got := ArchivePathFor("/captures/match-7.log")
	want := "/captures/match-7.labeler"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func buildTestLog(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create log: %v", err)
	}
	defer f.Close()

	wr, err := ssllog.Create(f)
	if err != nil {
		t.Fatalf("ssllog.Create: %v", err)
	}
	msgs := []*message.Message{
		{TimestampNs: 1, Payload: message.Payload{Tag: message.TagRefbox2013, Referee: &sslproto.RefereeMsg{Stage: sslproto.StageNormalFirstHalf}}},
		{TimestampNs: 2, Payload: message.Payload{Tag: message.TagVision2014, Vision: &sslproto.WrapperMsg{Detection: sslproto.DetectionFrame{CameraID: 0}}}},
	}
	for _, m := range msgs {
		if err := wr.Write(m); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
}

func TestProcessLogFileProducesReadableArchive(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "match.log")
	buildTestLog(t, logPath)

	archivePath := ArchivePathFor(logPath)
	if err := ProcessLogFile(logPath, archivePath); err != nil {
		t.Fatalf("ProcessLogFile: %v", err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	rd, err := labeler.Open(f)
	if err != nil {
		t.Fatalf("labeler.Open: %v", err)
	}
	if rd.NumCameras() != 1 {
		t.Fatalf("expected 1 camera, got %d", rd.NumCameras())
	}
}

func TestWatcherProcessesClosedCaptureOnce(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	var onProcessedCalls []string
	var mu sync.Mutex
	w.OnProcessed = func(archivePath string) {
		mu.Lock()
		onProcessedCalls = append(onProcessedCalls, archivePath)
		mu.Unlock()
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		w.Run(stop)
		close(done)
	}()

	logPath := filepath.Join(dir, "live.log")
	buildTestLog(t, logPath)

	archivePath := ArchivePathFor(logPath)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(archivePath); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if _, err := os.Stat(archivePath); err != nil {
		t.Fatalf("expected archive to be produced automatically: %v", err)
	}

	mu.Lock()
	calls := append([]string(nil), onProcessedCalls...)
	mu.Unlock()
	if len(calls) != 1 || calls[0] != archivePath {
		t.Fatalf("expected OnProcessed called once with %q, got %v", archivePath, calls)
	}

	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
