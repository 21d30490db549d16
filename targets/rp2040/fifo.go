//go:build rp2040 || rp2350

package main

import (
	"device/arm"
	"device/rp"
)

// sioChannel exposes the inter-core hardware FIFO as a core.ChannelEnd.
// The register view is symmetric: each core sees its own RX FIFO in the
// VLD flag and its own TX FIFO in RDY, so the same type serves both
// ends of the channel.
//
// The runtime also uses this FIFO to coordinate the cores around GC.
// The executor never allocates and services exactly one request at a
// time, so the protocol words and the runtime words cannot interleave
// within a transaction; fifoDrain at executor startup clears the
// launch handshake before the first request.
type sioChannel struct{}

func fifoValid() bool {
	return rp.SIO.FIFO_ST.Get()&rp.SIO_FIFO_ST_VLD != 0
}

func fifoReady() bool {
	return rp.SIO.FIFO_ST.Get()&rp.SIO_FIFO_ST_RDY != 0
}

// fifoDrain discards pending words on this core's RX side.
func fifoDrain() {
	for fifoValid() {
		rp.SIO.FIFO_RD.Get()
	}
}

// Push blocks until the FIFO accepts the word, then wakes the peer.
func (sioChannel) Push(word uint32) {
	for !fifoReady() {
	}
	rp.SIO.FIFO_WR.Set(word)
	arm.Asm("sev")
}

// Pop blocks until a word arrives. WFE parks the core between polls;
// any event or interrupt wakes it to re-check.
func (sioChannel) Pop() uint32 {
	for !fifoValid() {
		arm.Asm("wfe")
	}
	return rp.SIO.FIFO_RD.Get()
}
