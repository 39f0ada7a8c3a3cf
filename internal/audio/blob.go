package audio

import (
	"errors"
	"sync"
)

// ErrBlobConsumed indicates the blob's bytes were already taken.
var ErrBlobConsumed = errors.New("audio blob already consumed")

// Blob is one finalized recording. Its bytes can be taken exactly once.
type Blob struct {
	mu        sync.Mutex
	data      []byte
	size      int
	consumed  bool
	released  bool
	onRelease func()
}

// NewBlob wraps data. onRelease runs once, on the first Release.
func NewBlob(data []byte, onRelease func()) *Blob {
	return &Blob{data: data, size: len(data), onRelease: onRelease}
}

// Len returns the finalized size in bytes, including after the blob is consumed.
func (b *Blob) Len() int {
	return b.size
}

// Take moves the bytes out of the blob.
func (b *Blob) Take() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.consumed {
		return nil, ErrBlobConsumed
	}
	data := b.data
	b.data = nil
	b.consumed = true
	return data, nil
}

// Consumed reports whether the bytes were taken or released.
func (b *Blob) Consumed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consumed
}

// Release drops the bytes and invalidates the blob. Idempotent.
func (b *Blob) Release() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.released = true
	b.consumed = true
	b.data = nil
	hook := b.onRelease
	b.onRelease = nil
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
}
