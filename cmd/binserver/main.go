// Command binserver is a TCP front end for a binhash store, speaking the
// RESP subset implemented by internal/resp. It is a port of the reference
// implementation's asio-based Server/Session pair: one goroutine per
// connection replaces one session object per connection in the callback
// chain, and net.Listener.Accept's blocking loop replaces async_accept.
package main

import (
	"bufio"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/binhash/binhash"
	"github.com/binhash/binhash/internal/config"
	"github.com/binhash/binhash/internal/resp"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	listenAddr := flag.String("listen", "", "address to listen on (overrides config)")
	dataDir := flag.String("data", "", "store directory (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("binserver: %v", err)
		}
		cfg = loaded
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	opts := binhash.DefaultOptions()
	opts.CacheCapacity = cfg.CacheCapacity
	opts.CompactInterval = cfg.CompactInterval

	engine, err := binhash.Open(cfg.DataDir, cfg.ShardCount, opts)
	if err != nil {
		log.Fatalf("binserver: open store %s: %v", cfg.DataDir, err)
	}
	defer engine.Close()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("binserver: listen on %s: %v", cfg.ListenAddr, err)
	}
	log.Printf("binserver listening on %s (store %s)", cfg.ListenAddr, cfg.DataDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Printf("binserver: shutting down")
		ln.Close()
		if err := engine.Close(); err != nil {
			log.Printf("binserver: close store: %v", err)
		}
		os.Exit(0)
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("binserver: accept: %v", err)
			continue
		}
		go serve(engine, conn)
	}
}

// serve handles one client connection until it disconnects or sends a
// malformed command.
func serve(engine *binhash.Engine, conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	for {
		args, err := resp.ReadCommand(r)
		if err != nil {
			return
		}
		if err := dispatch(engine, conn, args); err != nil {
			return
		}
	}
}

// dispatch executes one command and writes its reply. A non-nil error means
// the connection-level write failed and the connection should be closed;
// application errors (unknown command, wrong arity) are written as RESP
// error replies and do not end the connection.
func dispatch(engine *binhash.Engine, conn net.Conn, args []string) error {
	if len(args) == 0 {
		return resp.WriteError(conn, "empty command")
	}

	switch args[0] {
	case "SET":
		if len(args) != 3 {
			return resp.WriteError(conn, "wrong number of arguments for SET")
		}
		if err := engine.Insert([]byte(args[1]), []byte(args[2])); err != nil {
			return resp.WriteError(conn, err.Error())
		}
		return resp.WriteOK(conn)

	case "GET":
		if len(args) != 2 {
			return resp.WriteError(conn, "wrong number of arguments for GET")
		}
		value, found, err := engine.Get([]byte(args[1]))
		if err != nil {
			return resp.WriteError(conn, err.Error())
		}
		if !found {
			return resp.WriteBulkString(conn, nil)
		}
		return resp.WriteBulkString(conn, value)

	case "DEL":
		if len(args) != 2 {
			return resp.WriteError(conn, "wrong number of arguments for DEL")
		}
		found, err := engine.Erase([]byte(args[1]))
		if err != nil {
			return resp.WriteError(conn, err.Error())
		}
		if found {
			return resp.WriteInt(conn, 1)
		}
		return resp.WriteInt(conn, 0)

	default:
		return resp.WriteError(conn, "unknown command or wrong number of arguments")
	}
}
