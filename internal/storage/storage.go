package storage

import (
	"context"
	"io"
)

type PutInput struct {
	Key         string // relative path, e.g. webhooks/2026-01-02/<id>.json
	ContentType string
}

type PutResult struct {
	Key      string
	Location string
}

type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
}

// None discards writes.
type None struct{}

func (None) Put(_ context.Context, _ io.Reader, in PutInput) (PutResult, error) {
	return PutResult{Key: in.Key}, nil
}

func (None) String() string { return "none" }
