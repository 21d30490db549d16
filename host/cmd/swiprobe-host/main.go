package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"swiprobe/host/config"
	"swiprobe/host/probe"
	"swiprobe/host/serial"
)

var (
	device     = flag.String("device", "", "Serial device path (overrides the config file)")
	baud       = flag.Int("baud", 0, "Baud rate (nominal; USB CDC ignores it)")
	configPath = flag.String("config", "", "YAML config file")
	verbose    = flag.Bool("verbose", false, "Print skipped console noise from the firmware")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("config load failed: %v", err)
		}
		cfg = loaded
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	fmt.Println("swiprobe host - AT21CS single-wire EEPROM probe")
	fmt.Println("================================================")

	p := probe.New()
	p.Timeout = time.Duration(cfg.ReplyTimeoutMs) * time.Millisecond
	p.Verbose = *verbose

	fmt.Printf("Connecting to probe on %s...\n", cfg.Device)
	err := p.ConnectWithConfig(&serial.Config{
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeoutMs,
	})
	if err != nil {
		log.Fatalf("connect failed: %v", err)
	}
	defer p.Close()

	fmt.Println("Connected successfully!")

	// A first discovery doubles as a liveness check for the firmware.
	present, err := p.Discover()
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "Warning: initial discovery failed: %v\n", err)
	case present:
		fmt.Println("Device present on the wire.")
	default:
		fmt.Println("No device answered discovery (wire may be empty).")
	}

	devAddr := cfg.DevAddr

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]

		switch cmd {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "discover":
			present, err := p.Discover()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if present {
				fmt.Println("Device present (ACK)")
			} else {
				fmt.Println("No device responded (NACK)")
			}

		case "id":
			id, err := p.ManufacturerID(devAddr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			fmt.Printf("Manufacturer ID: 0x%06X\n", id)

		case "read":
			if len(parts) < 2 {
				fmt.Println("Usage: read <start> [len]")
				continue
			}
			start, ok := parseByteArg("start address", parts[1])
			if !ok {
				continue
			}
			n := 16
			if len(parts) >= 3 {
				v, err := strconv.Atoi(parts[2])
				if err != nil || v < 0 {
					fmt.Printf("Bad length %q\n", parts[2])
					continue
				}
				n = v
			}
			data, err := p.ReadBlock(devAddr, start, n)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			dumpBytes(start, data)

		case "dump":
			data, err := p.ReadBlock(devAddr, 0, 128)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			dumpBytes(0, data)

		case "tx":
			if len(parts) < 2 {
				fmt.Println("Usage: tx <byte>")
				continue
			}
			b, ok := parseByteArg("byte", parts[1])
			if !ok {
				continue
			}
			acked, err := p.TransmitByte(b)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if acked {
				fmt.Println("ACK")
			} else {
				fmt.Println("NACK")
			}

		case "rx":
			v, err := p.ReceiveByte()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			fmt.Printf("Received: 0x%02X\n", v)

		case "addr":
			if len(parts) < 2 {
				fmt.Printf("Device address bits: 0x%02X\n", devAddr)
				continue
			}
			a, ok := parseByteArg("device address", parts[1])
			if !ok {
				continue
			}
			devAddr = a
			fmt.Printf("Device address bits set to 0x%02X\n", devAddr)

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help            - Show this help message")
	fmt.Println("  discover        - Reset the wire and check for a device")
	fmt.Println("  id              - Read the 24-bit manufacturer ID")
	fmt.Println("  read <a> [n]    - Verified read of n bytes from address a (default 16)")
	fmt.Println("  dump            - Verified read of the whole 128-byte array")
	fmt.Println("  tx <byte>       - Transmit one raw byte, report ACK/NACK")
	fmt.Println("  rx              - Receive one raw byte (always ACKed)")
	fmt.Println("  addr [bits]     - Show or set the device address bits")
	fmt.Println("  quit/exit/q     - Exit the program")
	fmt.Println()
}

// parseByteArg accepts decimal or 0x-prefixed hex.
func parseByteArg(name, s string) (byte, bool) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		fmt.Printf("Bad %s %q (use decimal or 0x hex)\n", name, s)
		return 0, false
	}
	return byte(v), true
}

func dumpBytes(start byte, data []byte) {
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Printf("  0x%02X:", int(start)+i)
		for _, b := range data[i:end] {
			fmt.Printf(" %02X", b)
		}
		fmt.Println()
	}
}
