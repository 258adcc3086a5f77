package link

import "sync/atomic"

// Pipe is an in-memory Channel. Tests and the preview server play the
// companion app by calling SetConnected and Feed.
type Pipe struct {
	inbox
	advertised   atomic.Int32
	AdvertiseErr error
}

func NewPipe() *Pipe {
	return &Pipe{}
}

func (p *Pipe) Advertise() error {
	if p.AdvertiseErr != nil {
		return p.AdvertiseErr
	}
	p.advertised.Add(1)
	return nil
}

// Advertised counts successful Advertise calls.
func (p *Pipe) Advertised() int {
	return int(p.advertised.Load())
}

func (p *Pipe) SetConnected(on bool) {
	p.setConnected(on)
}

// Feed queues bytes as if the app had written them. Bytes sent while
// disconnected are lost.
func (p *Pipe) Feed(b []byte) {
	if !p.Connected() {
		return
	}
	p.push(b)
}
