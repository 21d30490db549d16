package core

// RunExecutor services request words from ch and never returns. It is the
// whole program for the executor core: pop a request, run the bus
// transaction with interrupts masked, push the single result word back.
//
// Interrupts stay enabled between requests so the runtime keeps working;
// they are only masked for the duration of one transaction, which is what
// keeps the bit waveform free of scheduler and IRQ jitter. The loop
// allocates nothing.
func RunExecutor(ch ChannelEnd, engine *BitEngine) {
	for {
		op, payload := DecodeRequest(ch.Pop())

		state := disableInterrupts()
		var result uint8
		switch op {
		case OpTxByte:
			result = engine.TransmitByte(payload)
		case OpDiscovery:
			result = engine.Discovery()
		case OpRxByte:
			result = engine.ReceiveByte(payload)
		default:
			result = ResultNack
		}
		restoreInterrupts(state)

		ch.Push(uint32(result))
	}
}
