package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Marshal encodes doc as YAML. Map keys are emitted sorted, so equal documents
// produce equal bytes.
func Marshal(doc *Document) ([]byte, error) {
	if doc == nil || doc.Root == nil {
		return nil, ErrEmptyDocument
	}
	out := *doc
	if out.Version == 0 {
		out.Version = CurrentVersion
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load decodes a YAML document and validates it.
func Load(r io.Reader, path string) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailed, path, err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}
	if err := Validate(doc.Root); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return &doc, nil
}

// LoadFile reads one document from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, path)
}

// LoadFiles reads documents concurrently; the result keeps the order of paths.
// Parsing touches no shared state, so it is the only part of the pipeline that
// runs off the caller's goroutine.
func LoadFiles(ctx context.Context, paths []string) ([]*Document, error) {
	docs := make([]*Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := LoadFile(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Fingerprint hashes the canonical YAML encoding of doc.
func Fingerprint(doc *Document) (uint64, error) {
	data, err := Marshal(doc)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
