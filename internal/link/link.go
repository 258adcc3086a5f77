// Package link is the wireless byte channel to the companion app.
package link

import (
	"sync"
)

// Channel is polled from the main loop and must never block.
type Channel interface {
	Connected() bool
	// Advertise starts broadcasting so the app can find the globe.
	Advertise() error
	// Buffered is the number of received bytes waiting to be read.
	Buffered() int
	Read(p []byte) (int, error)
}

// MaxBuffered bounds the receive buffer; the oldest bytes are dropped past it.
const MaxBuffered = 1024

// inbox holds what a radio callback delivered until the loop reads it.
type inbox struct {
	mu        sync.Mutex
	connected bool
	buf       []byte
	dropped   int
}

func (b *inbox) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *inbox) setConnected(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = on
	if !on {
		b.buf = b.buf[:0]
	}
}

func (b *inbox) push(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - MaxBuffered; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
		b.dropped += over
	}
}

func (b *inbox) Buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// Read copies out what is buffered. It returns 0, nil when nothing is.
func (b *inbox) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := copy(p, b.buf)
	b.buf = append(b.buf[:0], b.buf[n:]...)
	return n, nil
}

// Dropped counts bytes discarded because the buffer was full.
func (b *inbox) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
