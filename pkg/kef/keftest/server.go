// Package keftest provides an in-process fake speaker for testing
// clients without hardware.
package keftest

import (
	"net"
	"strconv"
	"sync"
	"testing"
)

// Register reply and acknowledgement framing mirrors the real device:
// a short frame whose second-to-last byte carries the payload.
const (
	getStart = 0x47
	setStart = 0x53

	opVolume = 0x25
	opSource = 0x30

	ackOK = 0x11
)

// Server emulates the control port of an LS50 Wireless speaker. It
// keeps a volume register and a source/standby register and answers
// the read and write frames the real device understands. Each
// accepted connection serves one request at a time, like the device.
type Server struct {
	ln net.Listener

	mu        sync.Mutex
	volumeReg byte
	sourceReg byte
	silent    bool
}

// NewServer starts a fake speaker on a loopback port and registers its
// shutdown with t.Cleanup. The registers start at volume 0, source
// Wifi, powered on.
func NewServer(t *testing.T) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("keftest: listen: %v", err)
	}

	s := &Server{
		ln:        ln,
		sourceReg: 18, // Wifi, on
	}
	t.Cleanup(s.Close)

	go s.acceptLoop()
	return s
}

// Host and Port identify the listening endpoint.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

func (s *Server) Port() int {
	_, portStr, _ := net.SplitHostPort(s.ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return port
}

// Close stops the listener. In-flight connections are abandoned.
func (s *Server) Close() {
	s.ln.Close()
}

// VolumeRegister returns the raw volume register, mute flag included.
func (s *Server) VolumeRegister() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volumeReg
}

// SetVolumeRegister seeds the raw volume register.
func (s *Server) SetVolumeRegister(v byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumeReg = v
}

// SourceRegister returns the raw source/standby register.
func (s *Server) SourceRegister() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceReg
}

// SetSourceRegister seeds the raw source/standby register.
func (s *Server) SetSourceRegister(v byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourceReg = v
}

// SetSilent makes the server accept connections but never reply,
// emulating a wedged device.
func (s *Server) SetSilent(silent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.silent = silent
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, 8)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}

		s.mu.Lock()
		reply, ok := s.handle(buf[:n])
		silent := s.silent
		s.mu.Unlock()

		if silent {
			continue
		}
		if !ok {
			return
		}
		if _, err := conn.Write(reply); err != nil {
			return
		}
	}
}

// handle mutates the registers and builds the reply frame. Callers
// hold s.mu.
func (s *Server) handle(msg []byte) ([]byte, bool) {
	switch {
	case len(msg) == 3 && msg[0] == getStart:
		switch msg[1] {
		case opVolume:
			return replyFrame(msg[1], s.volumeReg), true
		case opSource:
			return replyFrame(msg[1], s.sourceReg), true
		}
	case len(msg) == 4 && msg[0] == setStart:
		switch msg[1] {
		case opVolume:
			s.volumeReg = msg[3]
			return replyFrame(msg[1], ackOK), true
		case opSource:
			s.sourceReg = msg[3]
			return replyFrame(msg[1], ackOK), true
		}
	}
	return nil, false
}

func replyFrame(op, payload byte) []byte {
	return []byte{0x52, op, 0x81, payload, 0x0D}
}
