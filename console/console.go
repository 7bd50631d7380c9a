// Package console implements the line-oriented control protocol spoken
// over the serial port: the same get/set/trigger surface as the web
// interface, for benches where the device hangs off a USB cable
// instead of the access point. Responses are single lines prefixed
// with "ok" or "err" so host tooling can parse them.
package console

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"dptgen/core"
)

// Console reads command lines from rw and writes one response line per
// command.
type Console struct {
	rw     io.ReadWriter
	store  *core.ParameterStore
	arb    *core.Arbiter
	engine *core.Engine
}

// New returns a console bound to the given stream.
func New(rw io.ReadWriter, store *core.ParameterStore, arb *core.Arbiter, engine *core.Engine) *Console {
	return &Console{rw: rw, store: store, arb: arb, engine: engine}
}

// Run processes commands until the stream ends. Blank lines are
// ignored.
func (c *Console) Run() error {
	scanner := bufio.NewScanner(c.rw)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := io.WriteString(c.rw, c.Exec(line)+"\r\n"); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Exec runs a single command line and returns the response line.
func (c *Console) Exec(line string) string {
	fields := strings.Fields(line)

	switch fields[0] {
	case "get":
		p := c.store.Get()
		return "ok " + p.String() + " state=" + c.engine.State().String()

	case "set":
		return c.execSet(fields[1:])

	case "trigger":
		// Same pre-trigger settle as the other request paths.
		time.Sleep(c.arb.PreTrigger())
		switch err := c.arb.Request(core.SourceNetwork); {
		case err == nil:
			return "ok triggered"
		case errors.Is(err, core.ErrBusy):
			return "err busy"
		default:
			return "err " + err.Error()
		}

	case "help":
		return "ok commands: get | set p1h=N p1l=N p2h=N p2l=N | trigger"
	}

	return "err unknown command: " + fields[0]
}

// execSet parses k=v assignments into a partial update. Unlike the web
// form, the console rejects malformed input outright: a typed command
// with a bad token is a mistake the operator should hear about.
func (c *Console) execSet(args []string) string {
	if len(args) == 0 {
		return "err set requires at least one assignment"
	}

	var u core.Update
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return "err malformed assignment: " + arg
		}
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return "err bad value for " + key + ": " + raw
		}
		val := uint32(v)

		switch key {
		case "p1h":
			u.P1High = &val
		case "p1l":
			u.P1Low = &val
		case "p2h":
			u.P2High = &val
		case "p2l":
			u.P2Low = &val
		default:
			return "err unknown parameter: " + key
		}
	}

	if err := c.store.Set(u); err != nil {
		return "err " + err.Error()
	}
	return "ok " + c.store.Get().String()
}
