package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"forensics/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"
)

// ErrBlobTooLarge is returned when an upload exceeds the configured max size
var ErrBlobTooLarge = errors.New("file exceeds maximum upload size")

var (
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9-_]`)
	safeExtension   = regexp.MustCompile(`^\.[a-z0-9]+$`)
)

// StoredBlob describes an evidence file written to disk
type StoredBlob struct {
	Name   string // sanitized on-disk name
	Path   string
	Size   int64
	SHA256 string
	// MirrorKey is the S3 object key, empty when mirroring is off or failed
	MirrorKey string
}

// BlobStore writes evidence uploads to a local directory, hashing them on the
// way through, and optionally mirrors each blob to S3.
type BlobStore struct {
	dir     string
	maxSize int64
	mirror  *S3Mirror
	logger  *zap.SugaredLogger
}

// NewBlobStore creates dir if needed. mirror may be nil.
func NewBlobStore(dir string, maxSize int64, mirror *S3Mirror, logger *zap.SugaredLogger) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &BlobStore{dir: dir, maxSize: maxSize, mirror: mirror, logger: logger}, nil
}

// SanitizeFileName builds a collision-resistant on-disk name:
// <base>-<unixnano>-<hex><ext>, with unsafe base characters replaced by '_'.
func SanitizeFileName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	if base == "" {
		base = "evidence"
	}
	if !safeExtension.MatchString(ext) {
		ext = ""
	}

	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return fmt.Sprintf("%s-%d-%s%s", base, now.UnixNano(), hex.EncodeToString(buf[:]), ext)
}

// Save streams r to disk under a sanitized name and returns its digest.
// Anything beyond maxSize fails with ErrBlobTooLarge and leaves no file behind.
func (b *BlobStore) Save(ctx context.Context, originalName string, r io.Reader) (*StoredBlob, error) {
	name := SanitizeFileName(originalName, time.Now())
	dst := filepath.Join(b.dir, name)

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to create evidence file: %w", err)
	}

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, hasher), io.LimitReader(r, b.maxSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("failed to write evidence file: %w", err)
	}
	if n > b.maxSize {
		_ = os.Remove(dst)
		return nil, ErrBlobTooLarge
	}

	blob := &StoredBlob{
		Name:   name,
		Path:   dst,
		Size:   n,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}

	if b.mirror != nil {
		key, err := b.mirror.Upload(ctx, blob)
		if err != nil {
			// Local copy is authoritative
			b.logger.Warnw("Failed to mirror evidence to S3", "file", name, "error", err)
		} else {
			blob.MirrorKey = key
		}
	}
	return blob, nil
}

// s3Uploader is the part of s3manager.Uploader we use
type s3Uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// S3Mirror copies stored blobs to an S3 bucket
type S3Mirror struct {
	bucket   string
	prefix   string
	uploader s3Uploader
}

// NewS3Mirror builds a mirror from config. Endpoint overrides allow MinIO
// and other S3-compatible stores.
func NewS3Mirror(cfg config.S3Config) (*S3Mirror, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Mirror{bucket: cfg.Bucket, prefix: cfg.Prefix, uploader: s3manager.NewUploader(sess)}, nil
}

// Upload copies the blob and returns the object key
func (m *S3Mirror) Upload(ctx context.Context, blob *StoredBlob) (string, error) {
	f, err := os.Open(blob.Path)
	if err != nil {
		return "", fmt.Errorf("failed to reopen evidence file: %w", err)
	}
	defer f.Close()

	key := path.Join(m.prefix, blob.Name)
	_, err = m.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:   aws.String(m.bucket),
		Key:      aws.String(key),
		Body:     f,
		Metadata: map[string]*string{"sha256": aws.String(blob.SHA256)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3://%s: %w", key, m.bucket, err)
	}
	return key, nil
}
