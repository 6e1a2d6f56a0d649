package objectstore

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// Decode wraps body with a decompressor chosen by the compression extension
// of res. Plain resources are returned as is. Closing the result closes body.
//
// The result may be closed from another goroutine while a Read is in flight:
// Close then only closes body, and the decompressor is released once that
// Read returns.
func Decode(res domain.Resource, body io.ReadCloser) (io.ReadCloser, error) {
	switch res.Compression() {
	case "":
		return body, nil
	case ".gz":
		zr, err := gzip.NewReader(body)
		if err != nil {
			body.Close()
			return nil, fmt.Errorf("%w: gzip %s: %v", domain.ErrResourceRead, res.Name(), err)
		}
		return &decoded{r: zr, body: body, release: func() { _ = zr.Close() }}, nil
	case ".zst":
		zr, err := zstd.NewReader(body, zstd.WithDecoderConcurrency(1))
		if err != nil {
			body.Close()
			return nil, fmt.Errorf("%w: zstd %s: %v", domain.ErrResourceRead, res.Name(), err)
		}
		return &decoded{r: zr, body: body, release: zr.Close}, nil
	case ".lz4":
		return &decoded{r: lz4.NewReader(body), body: body}, nil
	default:
		return body, nil
	}
}

// errDecoderClosed is returned by Read after Close.
var errDecoderClosed = errors.New("decoder closed")

// decoded is a decompressing reader over a closable body.
type decoded struct {
	r       io.Reader
	body    io.Closer
	release func()

	mu        sync.Mutex
	reading   bool
	closed    bool
	released  bool
	closeOnce sync.Once
	closeErr  error
}

func (d *decoded) Read(p []byte) (int, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, errDecoderClosed
	}
	d.reading = true
	d.mu.Unlock()

	n, err := d.r.Read(p)

	d.mu.Lock()
	d.reading = false
	if d.closed {
		d.releaseLocked()
	}
	d.mu.Unlock()
	return n, err
}

// Close closes the body, which unblocks a Read in flight. The decompressor
// is released here when idle, otherwise by that Read on its way out.
func (d *decoded) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.body.Close()
	})

	d.mu.Lock()
	d.closed = true
	if !d.reading {
		d.releaseLocked()
	}
	d.mu.Unlock()
	return d.closeErr
}

func (d *decoded) releaseLocked() {
	if d.released {
		return
	}
	d.released = true
	if d.release != nil {
		d.release()
	}
}
