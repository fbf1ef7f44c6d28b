// Package ipc is the out-of-band control surface: a unix socket speaking
// one JSON request and one JSON reply per connection. No network port.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"
)

const DefaultSocketPath = "/tmp/harken.sock"

// ControlMessage is one command from the control client.
// Recognized commands: pause, resume, status, history, say, exit.
type ControlMessage struct {
	Cmd string `json:"cmd"`
	Arg string `json:"arg,omitempty"`
}

type ControlReply struct {
	OK   bool   `json:"ok"`
	Text string `json:"text,omitempty"`
}

type Server struct {
	ln net.Listener
}

// StartServer listens on socketPath and calls handler once per connection.
// A stale socket file from a previous run is removed first.
func StartServer(socketPath string, handler func(ControlMessage) ControlReply) (*Server, error) {
	os.Remove(socketPath)

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handleConn(conn, handler)
		}
	}()

	return &Server{ln: ln}, nil
}

func (s *Server) Close() error {
	return s.ln.Close()
}

func handleConn(conn net.Conn, handler func(ControlMessage) ControlReply) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(30 * time.Second))

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		return
	}
	reply := handler(msg)
	json.NewEncoder(conn).Encode(reply)
}

// Send delivers one command to a running daemon and waits for its reply.
func Send(socketPath, cmd, arg string) (ControlReply, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return ControlReply{}, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(30 * time.Second))

	if err := json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd, Arg: arg}); err != nil {
		return ControlReply{}, err
	}

	var reply ControlReply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return ControlReply{}, err
	}
	return reply, nil
}
