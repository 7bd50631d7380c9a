//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"
)

// serialPort adapts the default machine serial device (USB CDC on the
// Pico) to io.ReadWriter for the console. Read blocks until at least
// one byte is available.
type serialPort struct{}

func (serialPort) Read(p []byte) (int, error) {
	n := 0
	for n == 0 {
		for machine.Serial.Buffered() > 0 && n < len(p) {
			b, err := machine.Serial.ReadByte()
			if err != nil {
				break
			}
			p[n] = b
			n++
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	return n, nil
}

func (serialPort) Write(p []byte) (int, error) {
	return machine.Serial.Write(p)
}
