//go:build rp2040 || rp2350

package main

// Delay calibration harness
//
// Measures the cycle-counted busy delay against the 1 MHz hardware
// timer and prints error statistics per duration. Run this after any
// change to the system clock setup and fold corrected loop constants
// back into targets/rp2040/delay_*.go.
//
// Also includes a FIFO roundtrip check so the inter-core channel can
// be smoke-tested on real silicon without wiring up a device.
//
// Flash with:
//
//	tinygo flash -target=pico ./test/calibrate
//	tinygo flash -target=pico2 ./test/calibrate

import (
	"device/arm"
	"device/rp"
	"machine"
	"runtime/volatile"
	"time"
	"unsafe"
)

// Duplicated from targets/rp2040 so this harness stands alone. Keep in
// sync when recalibrating.
const (
	delayLoopCycles     = 4
	delayOverheadCycles = 7
)

// The TIMER peripheral free-runs at 1 MHz from the watchdog tick.
// timerBase is per-chip, see chip_*.go. Register offsets:
//
//	timeHR   @ 0x08 - latched read, upper 32b
//	timeLR   @ 0x0C - latched read, lower 32b
//	timeRawH @ 0x24 - raw read, upper 32b
//	timeRawL @ 0x28 - raw read, lower 32b
//
// The raw pair has no latching side effects, so the high/low/high
// retry below stays correct even if another core reads concurrently.
const (
	timerTimeRawH = timerBase + 0x24
	timerTimeRawL = timerBase + 0x28
)

var (
	timerRawH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTimeRawH)))
	timerRawL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTimeRawL)))
)

// timeUs64 reads the 64-bit microsecond counter, retrying when the low
// word rolls over between the two halves.
func timeUs64() uint64 {
	for {
		high1 := timerRawH.Get()
		low := timerRawL.Get()
		high2 := timerRawH.Get()

		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
		// Rollover happened during the read, retry
	}
}

// busyDelay mirrors the firmware's loop byte for byte.
func busyDelay(us uint32) {
	if us == 0 {
		return
	}
	n := (us*delayCyclesPerMicro - delayOverheadCycles) / delayLoopCycles
	for ; n > 0; n-- {
		arm.Asm("nop")
	}
}

const samplesPerDuration = 50

// Durations that matter on the wire: the shortest low pulses, the bit
// frames of each profile, and the discovery holds.
var testDurations = []uint32{1, 2, 4, 10, 15, 25, 45, 100, 150, 500}

func main() {
	machine.Serial.Configure(machine.UARTConfig{})

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// Wait for the console.
	for i := 0; i < 30; i++ {
		led.Set(!led.Get())
		time.Sleep(100 * time.Millisecond)
	}

	println()
	println("=== Busy Delay Calibration ===")
	println("Cycles per us:", delayCyclesPerMicro)
	println("Samples per duration:", samplesPerDuration)
	println()

	for _, us := range testDurations {
		measureDelay(us)
	}

	fifoRoundtrip()

	println()
	println("=== Done ===")
	for {
		led.Set(!led.Get())
		time.Sleep(500 * time.Millisecond)
	}
}

// measureDelay times busyDelay(us) against the hardware timer and
// prints min/avg/max and percentile error in tenths of a microsecond.
func measureDelay(us uint32) {
	samples := make([]int64, samplesPerDuration)

	for i := 0; i < samplesPerDuration; i++ {
		mask := arm.DisableInterrupts()
		start := timeUs64()
		busyDelay(us)
		end := timeUs64()
		arm.EnableInterrupts(mask)

		// Error in tenths of a microsecond. The 1 MHz timer floors
		// the reading, so half a tick is added back.
		elapsed := int64(end-start)*10 + 5
		samples[i] = elapsed - int64(us)*10
	}

	bubbleSort(samples)

	var sum int64
	for _, s := range samples {
		sum += s
	}
	avg := sum / int64(len(samples))
	p95 := samples[len(samples)*95/100]

	println("delay", us, "us: err min", samples[0],
		"avg", avg, "p95", p95, "max", samples[len(samples)-1], "(0.1us units)")
}

// bubbleSort keeps the harness allocation-free and dependency-free;
// fifty samples do not need better.
func bubbleSort(a []int64) {
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(a)-i-1; j++ {
			if a[j] > a[j+1] {
				a[j], a[j+1] = a[j+1], a[j]
			}
		}
	}
}

func fifoValid() bool {
	return rp.SIO.FIFO_ST.Get()&rp.SIO_FIFO_ST_VLD != 0
}

func fifoReady() bool {
	return rp.SIO.FIFO_ST.Get()&rp.SIO_FIFO_ST_RDY != 0
}

func fifoDrain() {
	for fifoValid() {
		rp.SIO.FIFO_RD.Get()
	}
}

// echoCore1 bounces every word back incremented.
func echoCore1() {
	fifoDrain()
	for {
		for !fifoValid() {
			arm.Asm("wfe")
		}
		v := rp.SIO.FIFO_RD.Get()
		for !fifoReady() {
		}
		rp.SIO.FIFO_WR.Set(v + 1)
		arm.Asm("sev")
	}
}

// fifoRoundtrip launches an echo loop on core 1 and times a word
// through the FIFO and back, the same path every probe request takes.
func fifoRoundtrip() {
	println()
	println("=== FIFO Roundtrip ===")

	machine.Core1.Start(echoCore1)
	time.Sleep(100 * time.Millisecond)
	fifoDrain()

	const rounds = 100
	var worst, total int64

	for i := uint32(0); i < rounds; i++ {
		start := timeUs64()

		for !fifoReady() {
		}
		rp.SIO.FIFO_WR.Set(i)
		arm.Asm("sev")

		for !fifoValid() {
			arm.Asm("wfe")
		}
		got := rp.SIO.FIFO_RD.Get()

		elapsed := int64(timeUs64() - start)
		total += elapsed
		if elapsed > worst {
			worst = elapsed
		}

		if got != i+1 {
			println("MISMATCH: sent", i, "got", got)
			return
		}
	}

	println("rounds:", rounds, "avg", total/rounds, "us, worst", worst, "us")
}
