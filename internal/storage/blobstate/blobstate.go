// Package blobstate keeps each owner's diary as one JSON object in the blob store.
package blobstate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fdg312/calorie-diary/internal/blob"
)

const DefaultPrefix = "diaries"

type DiaryStorage struct {
	store  blob.Store
	prefix string
}

func New(store blob.Store, prefix string) *DiaryStorage {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &DiaryStorage{store: store, prefix: prefix}
}

// Key is the object key of an owner's diary.
func (d *DiaryStorage) Key(ownerID string) string {
	return fmt.Sprintf("%s/%s.json", d.prefix, url.PathEscape(ownerID))
}

func (d *DiaryStorage) LoadDiary(ctx context.Context, ownerID string) ([]byte, error) {
	data, err := d.store.GetObject(ctx, d.Key(ownerID))
	if errors.Is(err, blob.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (d *DiaryStorage) SaveDiary(ctx context.Context, ownerID string, data []byte) error {
	_, err := d.store.PutObject(ctx, d.Key(ownerID), data, "application/json")
	return err
}
