package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const photoBucket = "photos"

// BlobStore keeps listing photos in a GridFS bucket, using the document id as
// the file id.
type BlobStore struct {
	bucket *gridfs.Bucket
}

func NewBlobStore(db *mongo.Database) (*BlobStore, error) {
	b, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(photoBucket))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &BlobStore{bucket: b}, nil
}

// Put replaces any content previously stored under documentID. It runs
// outside any transaction.
func (s *BlobStore) Put(ctx context.Context, documentID string, content io.Reader) error {
	if err := s.Delete(ctx, documentID); err != nil {
		return err
	}
	if err := s.bucket.UploadFromStreamWithID(documentID, documentID, content); err != nil {
		return fmt.Errorf("upload photo %s: %w", documentID, err)
	}
	return nil
}

func (s *BlobStore) Delete(ctx context.Context, documentID string) error {
	err := s.bucket.DeleteContext(ctx, documentID)
	if err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("delete photo %s: %w", documentID, err)
	}
	return nil
}
