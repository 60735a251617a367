// Package publish uploads a finalized labeler archive (and optionally its
// source capture log) to Azure Blob Storage, for deployments that
// centralize match recordings off of capture boxes once C4's writer has
// torn down and the metadata footer is confirmed written.
//
// This is the one component in this module that crosses a network boundary
// and can legitimately time out; failures are classified with
// internal/errors' TimeoutError and IOError rather than returned raw.
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	sslerrors "github.com/robocup-ssl/ssl-log-tools/internal/errors"
	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
)

// Config describes the destination container and the deadline applied to
// each individual blob upload.
type Config struct {
	// ServiceURL is the account-level blob service URL, e.g.
	// "https://account.blob.core.windows.net/".
	ServiceURL string
	// ContainerName is the container within the account that archives and
	// logs are uploaded to.
	ContainerName string
	// UploadTimeout bounds each individual blob upload. Zero means
	// DefaultUploadTimeout.
	UploadTimeout time.Duration
}

// DefaultUploadTimeout is applied when Config.UploadTimeout is zero.
const DefaultUploadTimeout = 2 * time.Minute

// Publisher uploads finalized artifacts to a single Azure Blob container,
// authenticated via the ambient Azure identity (environment variables,
// managed identity, or workload identity — whatever azidentity's default
// chain resolves).
type Publisher struct {
	client *azblob.Client
	cfg    Config
}

// New constructs a Publisher against cfg.ServiceURL/cfg.ContainerName using
// azidentity.NewDefaultAzureCredential.
func New(cfg Config) (*Publisher, error) {
	if cfg.ServiceURL == "" || cfg.ContainerName == "" {
		return nil, fmt.Errorf("publish.New: ServiceURL and ContainerName must not be empty")
	}
	if cfg.UploadTimeout == 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("publish.New: resolving Azure credential: %w", err)
	}
	client, err := azblob.NewClient(cfg.ServiceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("publish.New: constructing blob client: %w", err)
	}
	return &Publisher{client: client, cfg: cfg}, nil
}

// UploadArchive uploads the labeler archive at localPath under blobName
// (defaults to the archive's base name when blobName is empty). A context
// deadline exceeded or an I/O failure while streaming the file is wrapped
// as a TimeoutError or IOError respectively so callers can retry on the
// former and fail fast on the latter.
func (p *Publisher) UploadArchive(ctx context.Context, localPath, blobName string) error {
	return p.uploadFile(ctx, localPath, blobName)
}

// UploadLog uploads the original capture log alongside an archive, for
// deployments that want to retain raw captures in the same container.
func (p *Publisher) UploadLog(ctx context.Context, localPath, blobName string) error {
	return p.uploadFile(ctx, localPath, blobName)
}

// resolveBlobName defaults blobName to localPath's base name when empty.
func resolveBlobName(localPath, blobName string) string {
	if blobName == "" {
		return filepath.Base(localPath)
	}
	return blobName
}

func (p *Publisher) uploadFile(ctx context.Context, localPath, blobName string) error {
	blobName = resolveBlobName(localPath, blobName)

	f, err := os.Open(localPath)
	if err != nil {
		return sslerrors.NewIOError("publish.uploadFile: open", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.UploadTimeout)
	defer cancel()

	log := logger.WithSource(logger.Logger(), localPath)
	log.Debug("publish: uploading blob", "blob", blobName, "timeout", p.cfg.UploadTimeout)

	_, err = p.client.UploadFile(ctx, p.cfg.ContainerName, blobName, f, nil)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return sslerrors.NewTimeoutError("publish.uploadFile", p.cfg.UploadTimeout, err)
		}
		return sslerrors.NewIOError("publish.uploadFile: upload", err)
	}

	log.Info("publish: upload complete", "blob", blobName)
	return nil
}
