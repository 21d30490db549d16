//go:build rp2040

package pio

// SWI waveform renderer using tinygo-org/pio package
// This plays open-drain bit cells in hardware so profile timing can be
// checked on a scope without CPU jitter in the picture

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"swiprobe/core"
)

// PIO program for bit cell rendering
// Cell word format:
//
//	Bits 0-15:  driven-low cycles
//	Bits 16-31: released cycles
//
// The state machine only moves the pin direction, never the output
// value. The pin's output latch is preset low once, so pindirs=1
// drives the line low and pindirs=0 releases it to the pull-up. That
// keeps the open-drain contract of the bus in hardware.
//
// Program flow:
//  1. Pull 32-bit cell from FIFO
//  2. Extract driven-low cycles into X, released cycles into Y
//  3. pindirs=1 and count X down (line driven low)
//  4. pindirs=0 and count Y down (line released)
//
// buildWaveformProgram creates the cell renderer using AssemblerV0
func buildWaveformProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),             // 0: pull block
		asm.Out(rp2pio.OutDestX, 16).Encode(),      // 1: out x, 16 (driven-low cycles)
		asm.Out(rp2pio.OutDestY, 16).Encode(),      // 2: out y, 16 (released cycles)
		asm.Set(rp2pio.SetDestPindirs, 1).Encode(), // 3: set pindirs, 1 (drive low)
		// low_loop:
		asm.Jmp(4, rp2pio.JmpXNZeroDec).Encode(),   // 4: jmp x--, 4
		asm.Set(rp2pio.SetDestPindirs, 0).Encode(), // 5: set pindirs, 0 (release)
		// high_loop:
		asm.Jmp(6, rp2pio.JmpYNZeroDec).Encode(), // 6: jmp y--, 6
		// .wrap
	}
}

const waveformPIOOrigin = 0 // Load at offset 0 for correct jump addresses

// One cell cycle is 0.2 us: 125 MHz divided by 25. The 0.2 us grain is
// what lets the high-speed profile's 1 us pulses render exactly.
const (
	waveformClockDiv = 25
	cyclesPerMicro   = 5

	// Fixed instruction costs inside one cell, in cell cycles: the
	// set before each loop, the loop fall-through, and on the released
	// side the pull/out/out of the next cell.
	lowFixedCycles  = 2
	restFixedCycles = 5
)

// WaveformUnit renders bit cells on one pin using a PIO state machine
type WaveformUnit struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
	pioNum uint8
	smNum  uint8
}

// NewWaveformUnit creates a renderer on the given PIO and state machine
// pioNum: 0 for PIO0, 1 for PIO1
// smNum: 0-3 for state machine number
func NewWaveformUnit(pioNum, smNum uint8) *WaveformUnit {
	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	return &WaveformUnit{
		pio:    pioHW,
		sm:     pioHW.StateMachine(smNum),
		pioNum: pioNum,
		smNum:  smNum,
	}
}

// Init claims the state machine and loads the cell renderer
func (u *WaveformUnit) Init(pin uint8) error {
	u.pin = machine.Pin(pin)

	// CRITICAL: Claim the state machine first!
	u.sm.TryClaim()

	// Build and load PIO program using AssemblerV0
	program := buildWaveformProgram()
	offset, err := u.pio.AddProgram(program, waveformPIOOrigin)
	if err != nil {
		return err
	}
	u.offset = offset

	// Configure pin for PIO
	u.pin.Configure(machine.PinConfig{Mode: u.pio.PinMode()})

	// Build state machine configuration
	cfg := rp2pio.DefaultStateMachineConfig()

	// Configure SET pins (wire pin) - set pindirs targets these
	cfg.SetSetPins(u.pin, 1)

	// Configure shift control: shift right, autopull DISABLED (we use explicit PULL), 32-bit threshold
	cfg.SetOutShift(true, false, 32)

	// Configure wrap points (program is 7 instructions: 0-6)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	// 0.2 us per cycle, see waveformClockDiv
	cfg.SetClkDivIntFrac(waveformClockDiv, 0)

	// Initialize state machine FIRST
	u.sm.Init(offset, cfg)

	// THEN set pin state (must be after Init!)
	// Released and latched low: the pull-up owns the high level and
	// pindirs alone moves the line from here on.
	u.sm.SetPindirsConsecutive(u.pin, 1, false)
	u.sm.SetPinsConsecutive(u.pin, 1, false)

	// Enable state machine
	u.sm.SetEnabled(true)

	return nil
}

// EncodeCell packs one bit cell. Durations are in microseconds; the
// fixed instruction costs of the renderer are subtracted so cells come
// out cycle-exact at the 0.2 us grain.
func EncodeCell(lowUs, restUs uint32) uint32 {
	low := cellCycles(lowUs*cyclesPerMicro, lowFixedCycles)
	rest := cellCycles(restUs*cyclesPerMicro, restFixedCycles)
	return rest<<16 | low
}

// cellCycles converts a cycle target to a loop count, clamped to the
// renderer's minimum and to the 16-bit field.
func cellCycles(cycles, fixed uint32) uint32 {
	if cycles <= fixed {
		return 0
	}
	n := cycles - fixed
	if n > 0xFFFF {
		n = 0xFFFF
	}
	return n
}

// EmitCell queues one cell, blocking while the FIFO is full
func (u *WaveformUnit) EmitCell(lowUs, restUs uint32) {
	for u.sm.IsTxFIFOFull() {
		// Busy wait - the FIFO drains in real time
	}
	u.sm.TxPut(EncodeCell(lowUs, restUs))
}

// EmitByte renders one byte MSB-first as transmit bit cells of prof
func (u *WaveformUnit) EmitByte(v uint8, prof core.TimingProfile) {
	for mask := uint8(0x80); mask != 0; mask >>= 1 {
		if v&mask != 0 {
			u.EmitCell(prof.LowOne, prof.TxOneRest())
		} else {
			u.EmitCell(prof.LowZero, prof.TxZeroRest())
		}
	}
}

// Stop halts the state machine, discards queued cells and leaves the
// unit ready for new ones
func (u *WaveformUnit) Stop() {
	u.sm.SetEnabled(false)
	u.sm.ClearFIFOs()
	u.sm.Restart()
	u.sm.SetEnabled(true)
}
