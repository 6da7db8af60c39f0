// Package storage keeps bill PDFs and proof images in a gocloud blob bucket.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
)

// Key prefixes inside the bucket
const (
	BillsPrefix   = "bills/"
	UploadsPrefix = "uploads/"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Object is an open stored file.
type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// Store wraps a blob bucket.
type Store struct {
	bucket *blob.Bucket
}

// NewFileStore opens a filesystem-backed bucket rooted at dir, creating it when missing.
func NewFileStore(dir string) (*Store, error) {
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{CreateDir: true})
	if err != nil {
		return nil, errors.Wrapf(err, "open storage bucket %s", dir)
	}
	return &Store{bucket: bucket}, nil
}

// New wraps an already opened bucket.
func New(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

// Put writes data under prefix+name.
func (s *Store) Put(ctx context.Context, prefix, name string, data []byte, contentType string) error {
	key, err := objectKey(prefix, name)
	if err != nil {
		return err
	}
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	return nil
}

// Open returns a reader for prefix+name. The caller closes it.
func (s *Store) Open(ctx context.Context, prefix, name string) (*Object, error) {
	key, err := objectKey(prefix, name)
	if err != nil {
		return nil, err
	}
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "open %s", key)
	}
	return &Object{ReadCloser: r, ContentType: r.ContentType(), Size: r.Size()}, nil
}

// Delete removes prefix+name. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, prefix, name string) error {
	key, err := objectKey(prefix, name)
	if err != nil {
		return err
	}
	if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}

// Close releases the bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

// objectKey rejects names that would escape the prefix.
func objectKey(prefix, name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, "\\\x00") || path.Clean(name) != name {
		return "", ErrNotFound
	}
	return prefix + name, nil
}
