package core

// ChannelEnd is one side of the word channel linking the dispatch core to
// the executor core. The protocol over it is strict request/response: the
// dispatcher pushes one request word and pops exactly one result word
// before pushing again, so a depth of one is all an implementation needs.
//
// On RP2040 hardware this is backed by the SIO inter-core FIFO; on the
// host it is backed by Go channels for tests and simulation.
type ChannelEnd interface {
	// Push blocks until the peer can accept the word.
	Push(word uint32)

	// Pop blocks until a word arrives from the peer and returns it.
	Pop() uint32
}

type chanEnd struct {
	tx chan<- uint32
	rx <-chan uint32
}

func (c *chanEnd) Push(word uint32) { c.tx <- word }
func (c *chanEnd) Pop() uint32      { return <-c.rx }

// NewChannelPair returns two connected channel ends. Words pushed on one
// end pop out of the other, in order, with capacity one per direction.
func NewChannelPair() (ChannelEnd, ChannelEnd) {
	ab := make(chan uint32, 1)
	ba := make(chan uint32, 1)
	return &chanEnd{tx: ab, rx: ba}, &chanEnd{tx: ba, rx: ab}
}
