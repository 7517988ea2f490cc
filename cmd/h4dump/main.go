// h4dump decodes H4/BCM frames from a hex string, a hexdump trace
// file, or a live serial bridge, and prints the dissection results.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	sniffer "github.com/fjferrer/esp32-bluetooth-classic-sniffer"
	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/capture"
	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/dissect"
	"github.com/fjferrer/esp32-bluetooth-classic-sniffer/h4"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type config struct {
	Serial capture.SerialConfig
	Output struct {
		JSON bool
		PHDR bool
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "h4dump"
	app.Usage = "dissect H4/BCM Bluetooth frames and their LMP payloads"
	app.Version = dissect.PluginInfo().Version
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "hex", Usage: "decode a single frame given as hex bytes"},
		cli.StringFlag{Name: "file", Usage: "decode frames from a hexdump trace, one frame per line"},
		cli.StringFlag{Name: "serial", Usage: "capture frames live from a serial port"},
		cli.UintFlag{Name: "baud", Value: 921600, Usage: "serial baud rate"},
		cli.StringFlag{Name: "config", Usage: "TOML config file with serial/output defaults"},
		cli.BoolFlag{Name: "phdr", Usage: "frames carry the 4-byte direction pseudo-header"},
		cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
		cli.BoolFlag{Name: "verbose", Usage: "trace-level logging"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		sniffer.SetLogLevelMax()
	}
	log := sniffer.GetLogger().ChildLogger(map[string]interface{}{"tool": "h4dump"})

	var cfg config
	if path := c.String("config"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return errors.Wrap(err, "can't read config")
		}
	}
	if c.Bool("json") {
		cfg.Output.JSON = true
	}
	if c.Bool("phdr") {
		cfg.Output.PHDR = true
	}
	if p := c.String("serial"); p != "" {
		cfg.Serial.Port = p
	}
	if b := c.Uint("baud"); b != 0 && c.IsSet("baud") {
		cfg.Serial.Baud = b
	}

	decode := h4.Decode
	if cfg.Output.PHDR {
		decode = h4.DecodeWithPHDR
	}
	emit := func(frame []byte) error {
		return printResult(frame, decode(frame), cfg.Output.JSON)
	}

	switch {
	case c.String("hex") != "":
		frame, err := parseHex(c.String("hex"))
		if err != nil {
			return err
		}
		return emit(frame)

	case c.String("file") != "":
		return replayFile(c.String("file"), emit)

	case cfg.Serial.Port != "":
		return captureSerial(cfg.Serial, emit, log)
	}

	return errors.New("nothing to do: use --hex, --file or --serial")
}

func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ':':
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "bad hex frame")
	}
	return b, nil
}

func replayFile(path string, emit func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "can't open trace")
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		t := strings.TrimSpace(sc.Text())
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		frame, err := parseHex(t)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		if err := emit(frame); err != nil {
			return err
		}
	}
	return sc.Err()
}

func captureSerial(cfg capture.SerialConfig, emit func([]byte) error, log sniffer.Logger) error {
	frames := make(chan []byte, 64)
	s, err := capture.OpenSerial(cfg, frames)
	if err != nil {
		return err
	}
	defer s.Close()
	log.Infof("capturing from %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case frame := <-frames:
			if err := emit(frame); err != nil {
				return err
			}
		case <-sig:
			log.Info("stopping capture")
			return nil
		}
	}
}

func printResult(frame []byte, r *dissect.Result, asJSON bool) error {
	if asJSON {
		out, err := json.MarshalIndent(struct {
			Frame string `json:"frame"`
			*dissect.Result
		}{hex.EncodeToString(frame), r}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("frame % x\n", frame)
	for _, f := range r.Fields {
		loc := fmt.Sprintf("[%d:%d]", f.ByteOffset, f.ByteOffset+f.ByteLen)
		if f.BitLen%8 != 0 || f.BitOffset != 0 {
			loc = fmt.Sprintf("%s.%d+%d", loc, f.BitOffset, f.BitLen)
		}
		switch {
		case f.Kind == dissect.KindBytes:
			fmt.Printf("  %-12s %-10s % x\n", loc, f.Name, f.Bytes)
		case f.Label != "":
			fmt.Printf("  %-12s %-10s %d (%s)\n", loc, f.Name, f.Value, f.Label)
		default:
			fmt.Printf("  %-12s %-10s %d\n", loc, f.Name, f.Value)
		}
	}
	for _, w := range r.Warnings {
		fmt.Printf("  ! %s @%d: %s\n", w.Severity, w.Offset, w.Message)
	}
	return nil
}
