package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type eventList []string

func (l *eventList) String() string     { return strings.Join(*l, ",") }
func (l *eventList) Set(v string) error { *l = append(*l, v); return nil }

type config struct {
	security string
	events   eventList
	start    string
	end      string

	host string
	port int

	outDir     string
	singlePath string
	duckdbPath string

	nonInteractive bool
	verbose        bool
}

func parseConfig(args []string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("tickscrape", flag.ContinueOnError)
	fs.StringVar(&cfg.security, "security", "", `security identifier, e.g. "IBM US Equity" (exactly one)`)
	fs.Var(&cfg.events, "event", "event type to request, repeatable (default TRADE, BID, ASK)")
	fs.StringVar(&cfg.start, "start", "", "start datetime in GMT, e.g. 2008-08-11T15:30:00")
	fs.StringVar(&cfg.end, "end", "", "end datetime in GMT, e.g. 2008-08-11T15:35:00")
	fs.StringVar(&cfg.host, "host", envOr("TDS_HOST", "localhost"), "tick-data service host")
	fs.IntVar(&cfg.port, "port", envOrInt("TDS_PORT", 8194), "tick-data service port")
	fs.StringVar(&cfg.outDir, "out", ".", "directory for the per-day csv files")
	fs.StringVar(&cfg.singlePath, "single", "", "write everything to this one file instead, with a header row")
	fs.StringVar(&cfg.duckdbPath, "duckdb", "", "also archive ticks into this duckdb file")
	fs.BoolVar(&cfg.nonInteractive, "n", false, "non-interactive: no prompts, no wait on exit")
	fs.BoolVar(&cfg.verbose, "v", false, "verbose logging")

	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintln(out, "Retrieve intraday raw ticks for one security.")
		_, _ = fmt.Fprintln(out, "Usage: tickscrape [flags]")
		fs.PrintDefaults()
		_, _ = fmt.Fprintln(out, "Notes:")
		_, _ = fmt.Fprintln(out, "  1) All times are in GMT.")
		_, _ = fmt.Fprintln(out, "  2) Only one security can be specified per request.")
	}

	err := fs.Parse(args)
	return cfg, err
}

// promptMissing fills in the values an interactive run still needs.
// Leaving both dates empty selects the default trading window.
func (cfg *config) promptMissing(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	var err error
	if cfg.security == "" {
		if cfg.security, err = prompt(reader, out, "Provide ticker: "); err != nil {
			return err
		}
	}
	if cfg.start == "" {
		if cfg.start, err = prompt(reader, out, "Provide start date: "); err != nil {
			return err
		}
	}
	if cfg.end == "" {
		if cfg.end, err = prompt(reader, out, "Provide end date: "); err != nil {
			return err
		}
	}
	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(out, label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
