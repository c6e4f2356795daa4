// Command bincli is an interactive REPL over a binhash store: SET, GET, DEL,
// and exit. It is a direct port of the reference implementation's REPL,
// restructured around bufio.Scanner instead of std::getline/istringstream.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/binhash/binhash"
	"github.com/binhash/binhash/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	dataDir := flag.String("data", "", "store directory (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("bincli: %v", err)
		}
		cfg = loaded
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	opts := binhash.DefaultOptions()
	opts.CacheCapacity = cfg.CacheCapacity
	opts.CompactInterval = cfg.CompactInterval

	engine, err := binhash.Open(cfg.DataDir, cfg.ShardCount, opts)
	if err != nil {
		log.Fatalf("bincli: open store %s: %v", cfg.DataDir, err)
	}
	defer engine.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		if err := engine.Close(); err != nil {
			log.Printf("bincli: close store: %v", err)
		}
		os.Exit(0)
	}()

	runREPL(engine, os.Stdin, os.Stdout)
}

// runREPL reads commands from in and writes responses to out until it reads
// "exit" or in is exhausted.
func runREPL(engine *binhash.Engine, in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "binhash REPL. Type 'exit' to quit.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd := strings.ToUpper(fields[0])

		if cmd == "EXIT" {
			return
		}

		switch cmd {
		case "SET":
			// SET <key> "<value>"
			rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
			key, value, ok := parseSet(rest)
			if !ok {
				fmt.Fprintln(out, `Invalid SET command. Format: SET <key> "<value>"`)
				continue
			}
			if err := engine.Insert([]byte(key), []byte(value)); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "OK")

		case "GET":
			if len(fields) != 2 {
				fmt.Fprintln(out, "Invalid GET command. Format: GET <key>")
				continue
			}
			value, found, err := engine.Get([]byte(fields[1]))
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			if !found {
				fmt.Fprintln(out, "Key not found.")
				continue
			}
			fmt.Fprintf(out, "Value: %q\n", value)

		case "DEL":
			if len(fields) != 2 {
				fmt.Fprintln(out, "Invalid DEL command. Format: DEL <key>")
				continue
			}
			found, err := engine.Erase([]byte(fields[1]))
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			if !found {
				fmt.Fprintln(out, "Key not found.")
			} else {
				fmt.Fprintln(out, "Key deleted.")
			}

		default:
			fmt.Fprintln(out, "Unknown command. Supported commands: SET, GET, DEL.")
		}
	}
}

// parseSet splits "<key> \"<value>\"" into key and value, reporting ok=false
// if rest isn't in that form.
func parseSet(rest string) (key, value string, ok bool) {
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) != 2 {
		return "", "", false
	}
	key = fields[0]
	v := strings.TrimSpace(fields[1])
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return "", "", false
	}
	return key, v[1 : len(v)-1], true
}
