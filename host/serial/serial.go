package serial

import (
	"io"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - In-memory scripted ports (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate. The probe firmware is USB CDC, which ignores the
	// rate, but the OS serial layer still wants one.
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns a default configuration for the probe firmware
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200, // Nominal only; USB CDC negotiates its own speed
		ReadTimeout: 100,    // 100ms read timeout
	}
}
