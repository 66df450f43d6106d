package ports

import (
	"context"
	"io"
)

// BlobStore keeps uploaded file payloads outside the relational store.
type BlobStore interface {
	// Save stores the payload under a name derived from name and returns
	// the locator recorded as the field value.
	Save(ctx context.Context, name string, r io.Reader) (string, error)

	// ResolveURL turns a stored locator into a retrievable URL. origin is
	// "scheme://host" of the current request, used by stores served by
	// this process.
	ResolveURL(locator, origin string) string

	// Delete removes the payload behind a locator returned by Save. A
	// payload that is already gone is not an error.
	Delete(ctx context.Context, locator string) error
}
