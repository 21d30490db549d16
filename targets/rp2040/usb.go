//go:build rp2040 || rp2350

package main

import "machine"

// InitUSB brings up the USB CDC console used for the JSON command
// stream. The baud rate in the host's port settings is nominal; CDC
// moves bytes at bus speed.
func InitUSB() {
	machine.Serial.Configure(machine.UARTConfig{})
}

// USBAvailable returns the number of buffered input bytes.
func USBAvailable() int {
	return machine.Serial.Buffered()
}

// USBRead reads a single byte from the console.
func USBRead() (byte, error) {
	return machine.Serial.ReadByte()
}

// USBWrite writes a single byte to the console.
func USBWrite(b byte) error {
	return machine.Serial.WriteByte(b)
}

// USBWriteBytes writes a byte slice to the console.
func USBWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}
