// File: cmd/streamsock/main.go
// Package main
// Engine host: runs a verification or echo session against an in-process
// peer, over either the in-memory pipe or a unix socketpair transport.
// License: Apache-2.0

package main

import (
	"flag"
	"log"
	"os"
	"time"

	"streamsock/api"
	"streamsock/client"
	"streamsock/facade"
	"streamsock/protocol"
	"streamsock/session"
	"streamsock/transport"
)

func main() {
	configPath := flag.String("c", "", "path to YAML config file")
	mode := flag.String("mode", "", "session mode: verify or echo (overrides config)")
	transportName := flag.String("transport", "pipe", "peer transport: pipe or socketpair")
	messages := flag.Int("n", 5, "echo mode: number of messages to send")
	flag.Parse()

	cfg := facade.DefaultConfig()
	if *configPath != "" {
		loaded, err := facade.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	switch *mode {
	case "":
	case "verify":
		cfg.Mode = session.ModeVerify
	case "echo":
		cfg.Mode = session.ModeEcho
	default:
		log.Fatalf("unknown mode %q", *mode)
	}

	eng, err := facade.New(cfg)
	if err != nil {
		log.Fatalf("engine init: %v", err)
	}
	defer eng.Shutdown()

	var (
		writer  api.StreamWriter
		peer    *client.Client
		cleanup func()
	)
	onEcho := make(chan *protocol.Frame, 16)
	record := client.OnFrame(func(f *protocol.Frame) {
		if f.Opcode == protocol.OpcodeText || f.Opcode == protocol.OpcodeBinary {
			onEcho <- f
		}
	})

	switch *transportName {
	case "pipe":
		pipe := transport.NewPipe(transport.WithChunkSize(3))
		pipe.Bind(eng.OnInbound)
		peer = client.New(func(b []byte) { pipe.Deliver(b) }, record)
		go func() {
			for {
				data, ok := pipe.Receive()
				if !ok {
					return
				}
				peer.Feed(data)
			}
		}()
		writer = pipe.Writer()
		cleanup = pipe.Close
	case "socketpair":
		sp, err := transport.NewSocketPair()
		if err != nil {
			log.Fatalf("socketpair: %v", err)
		}
		peer = client.New(func(b []byte) {
			if err := sp.PeerWrite(b); err != nil {
				log.Printf("[host] peer write: %v", err)
			}
		}, record)
		go func() {
			if err := sp.Pump(eng.OnInbound); err != nil {
				log.Printf("[host] pump: %v", err)
			}
		}()
		go func() {
			buf := make([]byte, 64*1024)
			for {
				n, err := sp.PeerRead(buf)
				if err != nil || n == 0 {
					return
				}
				peer.Feed(buf[:n])
			}
		}()
		writer = sp.Writer()
		cleanup = sp.Close
	default:
		log.Fatalf("unknown transport %q", *transportName)
	}

	s, err := eng.Connect(writer)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	log.Printf("[host] session %s started: mode=%s transport=%s", s.ID(), cfg.Mode, *transportName)

	if cfg.Mode == session.ModeEcho {
		for i := 0; i < *messages; i++ {
			if err := peer.SendText(time.Now().Format("echo at 15:04:05.000")); err != nil {
				log.Fatalf("send: %v", err)
			}
			select {
			case f := <-onEcho:
				log.Printf("[host] round-trip %d: %q", i+1, f.Payload)
			case <-time.After(5 * time.Second):
				log.Fatalf("no echo for message %d", i+1)
			}
		}
		if err := peer.SendClose(protocol.CloseNormalClosure); err != nil {
			log.Fatalf("close: %v", err)
		}
	}

	<-s.Done()
	cleanup()

	for k, v := range s.Stats() {
		log.Printf("[host] %s=%d", k, v)
	}
	if code := s.ExitCode(cfg.Mode); code != 0 {
		log.Printf("[host] session %s failed", s.ID())
		os.Exit(code)
	}
	log.Printf("[host] session %s succeeded", s.ID())
}
