// dptctl drives a double-pulse generator from the PC, either over the
// instrument's access point (HTTP) or over a USB serial cable (the
// device console protocol).
//
// Usage:
//
//	dptctl [flags] get
//	dptctl [flags] set p1h=10 p1l=2 p2h=5 p2l=5000
//	dptctl [flags] trigger
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dptgen/host/hostcfg"
	"dptgen/host/serial"
)

var (
	configPath = flag.String("config", "", "YAML config file (default ~/.dptctl.yaml)")
	device     = flag.String("device", "", "serial device path (overrides config, selects serial)")
	addr       = flag.String("addr", "", "device HTTP address (overrides config, selects HTTP)")
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dptctl [flags] get | set k=v ... | trigger")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	switch args[0] {
	case "get", "set", "trigger":
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	useSerial := *device != ""
	if !useSerial && *addr == "" && cfg.Device != "" {
		useSerial = true
	}

	if useSerial {
		err = runSerial(cfg, strings.Join(args, " "))
	} else {
		err = runHTTP(cfg, args)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*hostcfg.Config, error) {
	path := *configPath
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".dptctl.yaml")
		}
	}

	cfg, err := hostcfg.Load(path)
	if err != nil {
		return nil, err
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	return cfg, nil
}

// runHTTP maps the command onto the device's web surface.
func runHTTP(cfg *hostcfg.Config, args []string) error {
	// Triggers hold the connection through the pre-trigger delay, the
	// emission and the cooldown, so give the client generous room.
	client := &http.Client{Timeout: 60 * time.Second}
	base := strings.TrimRight(cfg.Addr, "/")

	var (
		resp *http.Response
		err  error
	)
	switch args[0] {
	case "get":
		resp, err = client.Get(base + "/status")

	case "set":
		form := url.Values{}
		for _, arg := range args[1:] {
			k, v, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("malformed assignment: %s", arg)
			}
			form.Set(k, v)
		}
		resp, err = client.PostForm(base+"/set", form)

	case "trigger":
		resp, err = client.Get(base + "/trigger")
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(string(body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("device returned %s: %s", resp.Status, text)
	}
	fmt.Println(text)
	return nil
}

// runSerial sends one console command line and prints the response.
func runSerial(cfg *hostcfg.Config, line string) error {
	scfg := serial.DefaultConfig(cfg.Device)
	scfg.Baud = cfg.Baud

	port, err := serial.Open(scfg)
	if err != nil {
		return err
	}
	defer port.Close()

	if _, err := fmt.Fprintf(port, "%s\n", line); err != nil {
		return err
	}

	reply, err := readLine(port, 60*time.Second)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	if strings.HasPrefix(reply, "err ") {
		os.Exit(1)
	}
	return nil
}

// readLine accumulates bytes until a newline arrives or the deadline
// expires. The port's short read timeout makes Read return whatever is
// available, so this is a polling loop, not a blocking read.
func readLine(port serial.Port, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	var line []byte
	buf := make([]byte, 64)

	for time.Now().Before(deadline) {
		n, err := port.Read(buf)
		if err != nil && err != io.EOF {
			return "", err
		}
		line = append(line, buf[:n]...)
		if i := strings.IndexByte(string(line), '\n'); i >= 0 {
			return strings.TrimSpace(string(line[:i])), nil
		}
	}
	return "", fmt.Errorf("timed out waiting for device response")
}
