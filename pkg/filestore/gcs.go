package filestore

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCS stores files as objects under a bucket prefix. The returned reference
// is the object path below the prefix.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSClient creates a Google Cloud Storage client. With an empty credsPath
// Application Default Credentials are used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func NewGCS(client *storage.Client, bucket, prefix string) *GCS {
	return &GCS{client: client, bucket: bucket, prefix: prefix}
}

func (g *GCS) Store(ctx context.Context, r io.Reader, ownerID, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := ownerID + "_" + uuid.NewString() + ext

	wc := g.object(name).NewWriter(ctx)
	wc.ChunkSize = 0 // small files, skip chunking
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return name, nil
}

func (g *GCS) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	return g.object(name).NewReader(ctx)
}

func (g *GCS) Delete(ctx context.Context, name string) error {
	return g.object(name).Delete(ctx)
}

func (g *GCS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := g.object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (g *GCS) object(name string) *storage.ObjectHandle {
	p := name
	if g.prefix != "" {
		p = g.prefix + "/" + name
	}
	return g.client.Bucket(g.bucket).Object(p)
}

var _ FileStore = (*GCS)(nil)
