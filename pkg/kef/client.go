package kef

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"time"
)

// Speaker is a client for one speaker's control port. It holds no
// connection or device state between calls: every operation dials the
// speaker, performs a single request/response exchange and closes the
// connection. Concurrent calls never share a socket, so a Speaker is
// safe for concurrent use.
type Speaker struct {
	addr           string
	connectTimeout time.Duration
	requestTimeout time.Duration
	volumeStep     float64
	maximumVolume  float64
	logger         *slog.Logger
}

// NewSpeaker creates a client for the speaker at the given host.
// Options can be provided to configure the port, timeouts and volume
// tuning.
func NewSpeaker(host string, opts ...Option) (*Speaker, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return &Speaker{
		addr:           net.JoinHostPort(host, fmt.Sprintf("%d", cfg.port)),
		connectTimeout: cfg.connectTimeout,
		requestTimeout: cfg.requestTimeout,
		volumeStep:     cfg.volumeStep,
		maximumVolume:  cfg.maximumVolume,
		logger:         cfg.logger,
	}, nil
}

// Addr returns the host:port the client talks to.
func (s *Speaker) Addr() string {
	return s.addr
}

func (s *Speaker) dial(ctx context.Context) (net.Conn, error) {
	// Apply connect timeout to context if not already set
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.connectTimeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, &CommunicationError{Op: "dial " + s.addr, Err: err}
	}
	return conn, nil
}

// send performs one request/response exchange and returns the reply
// payload byte.
func (s *Speaker) send(ctx context.Context, op string, msg []byte) (byte, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("dial failed", "op", op, "error", err)
		}
		return 0, err
	}
	defer conn.Close()

	deadline := time.Now().Add(s.requestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return 0, &CommunicationError{Op: op, Err: err}
	}

	if _, err := conn.Write(msg); err != nil {
		if s.logger != nil {
			s.logger.Debug("write failed", "op", op, "error", err)
		}
		return 0, &CommunicationError{Op: op, Err: err}
	}

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("read failed", "op", op, "error", err)
		}
		return 0, &CommunicationError{Op: op, Err: err}
	}

	reply, err := parseReply(buf[:n])
	if err != nil {
		return 0, &CommunicationError{Op: op, Err: err}
	}

	if s.logger != nil {
		s.logger.Debug("exchange complete", "op", op, "reply", reply)
	}
	return reply, nil
}

// write sends a register write and checks the acknowledgement.
func (s *Speaker) write(ctx context.Context, op string, msg []byte) error {
	reply, err := s.send(ctx, op, msg)
	if err != nil {
		return err
	}
	if reply != responseOK {
		return &CommunicationError{Op: op, Err: fmt.Errorf("%w: reply %d", ErrInvalidResponse, reply)}
	}
	return nil
}

// IsOnline reports whether the speaker accepts connections. It returns
// false instead of an error when the device is unreachable within the
// connect timeout.
func (s *Speaker) IsOnline(ctx context.Context) bool {
	conn, err := s.dial(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("offline", "addr", s.addr, "error", err)
		}
		return false
	}
	conn.Close()
	return true
}

func (s *Speaker) clamp(level float64) float64 {
	return math.Max(0, math.Min(s.maximumVolume, level))
}

// rawVolume reads the volume register. Bit 7 carries the mute flag,
// the low bits carry the level in device units (0..100).
func (s *Speaker) rawVolume(ctx context.Context) (byte, error) {
	return s.send(ctx, "get volume", getRequest(opVolume))
}

// GetVolume returns the volume level in [0, 1], clamped to the
// configured maximum. The mute flag does not affect the reported
// level.
func (s *Speaker) GetVolume(ctx context.Context) (float64, error) {
	raw, err := s.rawVolume(ctx)
	if err != nil {
		return 0, err
	}
	return s.clamp(float64(raw&valueMask) / volumeScale), nil
}

// SetVolume writes the volume level, clamped to [0, maximum volume].
// Writing a level also clears the mute flag.
func (s *Speaker) SetVolume(ctx context.Context, level float64) error {
	units := byte(math.Round(s.clamp(level) * volumeScale))
	return s.write(ctx, "set volume", setRequest(opVolume, units))
}

func (s *Speaker) changeVolume(ctx context.Context, step float64) (float64, error) {
	raw, err := s.rawVolume(ctx)
	if err != nil {
		return 0, err
	}
	level := s.clamp(float64(raw&valueMask)/volumeScale + step)
	if err := s.SetVolume(ctx, level); err != nil {
		return 0, err
	}
	return level, nil
}

// IncreaseVolume raises the volume by the configured step, never above
// the configured maximum, and returns the new level. Stepping the
// volume unmutes the speaker.
func (s *Speaker) IncreaseVolume(ctx context.Context) (float64, error) {
	return s.changeVolume(ctx, s.volumeStep)
}

// DecreaseVolume lowers the volume by the configured step, never below
// zero, and returns the new level. Stepping the volume unmutes the
// speaker.
func (s *Speaker) DecreaseVolume(ctx context.Context) (float64, error) {
	return s.changeVolume(ctx, -s.volumeStep)
}

// IsMuted reports whether the mute flag is set.
func (s *Speaker) IsMuted(ctx context.Context) (bool, error) {
	raw, err := s.rawVolume(ctx)
	if err != nil {
		return false, err
	}
	return raw&flagBit != 0, nil
}

// Mute sets the mute flag without touching the stored volume level.
func (s *Speaker) Mute(ctx context.Context) error {
	raw, err := s.rawVolume(ctx)
	if err != nil {
		return err
	}
	return s.write(ctx, "mute", setRequest(opVolume, raw&valueMask|flagBit))
}

// Unmute clears the mute flag, restoring the stored volume level.
func (s *Speaker) Unmute(ctx context.Context) error {
	raw, err := s.rawVolume(ctx)
	if err != nil {
		return err
	}
	return s.write(ctx, "unmute", setRequest(opVolume, raw&valueMask))
}

// GetSourceAndState reads the combined source/standby register in one
// exchange. The register names the last active source even while the
// unit is in standby, so callers get (last source, false) for a
// powered-off speaker.
func (s *Speaker) GetSourceAndState(ctx context.Context) (Source, bool, error) {
	reply, err := s.send(ctx, "get source", getRequest(opSource))
	if err != nil {
		return "", false, err
	}
	source, on, err := decodeStatus(reply)
	if err != nil {
		return "", false, &CommunicationError{Op: "get source", Err: err}
	}
	return source, on, nil
}

// SetSource selects the active input. Selecting a source also wakes
// the speaker from standby. The source must be one of Sources.
func (s *Speaker) SetSource(ctx context.Context, source Source) error {
	code, ok := sourceCodes[source]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}
	return s.write(ctx, "set source", setRequest(opSource, code))
}

// TurnOn wakes the speaker from standby. The device has no standalone
// power opcode: re-selecting the source the status register reports
// clears the standby flag, keeping the user's last input. A speaker
// that already reports on is left untouched.
func (s *Speaker) TurnOn(ctx context.Context) error {
	source, on, err := s.GetSourceAndState(ctx)
	if err != nil {
		return err
	}
	if on {
		return nil
	}
	return s.SetSource(ctx, source)
}

// TurnOff puts the speaker into standby by writing the current source
// code with the standby flag set. A speaker that already reports
// standby is left untouched.
func (s *Speaker) TurnOff(ctx context.Context) error {
	source, on, err := s.GetSourceAndState(ctx)
	if err != nil {
		return err
	}
	if !on {
		return nil
	}
	return s.write(ctx, "turn off", setRequest(opSource, sourceCodes[source]|flagBit))
}
