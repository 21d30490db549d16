//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"swiprobe/core"
	"swiprobe/protocol"
)

const (
	// GPIO allocation. The single-wire bus needs an external pull-up
	// sized for the speed profile; the internal pull-up is enabled as
	// a fallback.
	singleWirePin = 2

	// Longest accepted command line, including the JSON envelope.
	commandBufferSize = 256
)

func main() {
	// Disable the watchdog on boot so a timeout armed by a previous
	// firmware cannot fire mid-session.
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// Blink while the host enumerates the CDC port. There is no
	// connect signal to poll, so a fixed settle window has to do.
	for i := 0; i < 20; i++ {
		toggleLED()
		time.Sleep(100 * time.Millisecond)
	}

	printBanner()

	mode := GetMode()

	// Command tracing goes to the USB console. Trace lines carry no
	// status field, which marks them as console noise to the host.
	core.SetDebugWriter(debugToUSB)
	core.SetDebugEnabled(mode.Debug)
	if core.IsDebugEnabled() {
		println("Command tracing enabled")
	}

	if mode.Waveform {
		// Calibration mode owns the wire pin through the PIO; the
		// executor core is never started. Returns only on chips
		// without the PIO program.
		RunWaveformMode()
	}

	// Launch the executor on the second core for timing-critical
	// bit-banging. From here on the wire belongs to that core.
	machine.Core1.Start(executorMain)

	session := core.NewSession(sioChannel{}, busyDelay)
	dispatcher := core.NewDispatcher(session)
	assembler := protocol.NewLineAssembler(commandBufferSize)

	lastBlink := time.Now()

	// Main loop: read JSON commands from USB serial, dispatch them,
	// and toggle the LED as an activity indicator.
	for {
		if USBAvailable() > 0 {
			b, err := USBRead()
			if err == nil {
				USBWrite(b) // echo received characters back
				if line, ok := assembler.Feed(b); ok {
					writeReply(dispatcher.HandleLine(line))
				}
			}
		} else {
			// Yield so USB and the runtime keep getting serviced.
			time.Sleep(100 * time.Microsecond)
		}

		if time.Since(lastBlink) >= 250*time.Millisecond {
			toggleLED()
			lastBlink = time.Now()
		}
	}
}

// executorMain is the whole program for the second core: it owns the
// wire and services one request word at a time.
func executorMain() {
	wire := newWireLine(singleWirePin)
	wire.Init()

	engine := core.NewBitEngine(wire, busyDelay, core.PrusaExtension)

	// Discard anything left over from the core-launch handshake so the
	// first request pairs with the first response.
	fifoDrain()

	core.RunExecutor(sioChannel{}, engine)
}

// printBanner prints the splash message once the USB console is up.
func printBanner() {
	println()
	println("******************************************")
	println("*   AT21CS11 Pico JSON Command Tool      *")
	println("*                                        *")
	println("*  Firmware Interface Test Utility Ready *")
	println("*                                        *")
	println("*  Inject commands via USB serial to     *")
	println("*  emulate and test AT21CS11 EEPROMs.    *")
	println("******************************************")
	println()
}

// writeReply sends one reply envelope followed by the line terminator.
func writeReply(reply []byte) {
	USBWriteBytes(reply)
	USBWrite('\n')
}

// debugToUSB writes one trace line to the USB console.
func debugToUSB(msg string) {
	USBWriteBytes([]byte(msg))
	USBWrite('\n')
}
