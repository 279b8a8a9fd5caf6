package oscio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"sync"

	"github.com/dusxproductions/kinect2share/control"
	"github.com/hypebeast/go-osc/osc"
)

const (
	AddressExit  = "/app-exit"
	AddressJSON  = "/kv2/json"
	addressSpout = "/kv2/spout/"
	addressNDI   = "/kv2/ndi/"

	commandBacklog = 64
	maxPacketSize  = 65535
)

type CommandKind int

const (
	CommandExit CommandKind = iota
	CommandSet
)

// Command is a control request received over OSC.
type Command struct {
	Kind   CommandKind
	Toggle control.Toggle
	On     bool
}

type Receiver struct {
	conn       net.PacketConn
	dispatcher *osc.StandardDispatcher
	commands   chan Command
	logger   *slog.Logger

	closeOnce sync.Once
}

// NewReceiver listens for OSC commands on the given UDP port of all
// interfaces. Port 0 picks a free port.
func NewReceiver(port int, logger *slog.Logger) (*Receiver, error) {
	return listen(fmt.Sprintf(":%d", port), logger)
}

func listen(addr string, logger *slog.Logger) (*Receiver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on osc port: %w", err)
	}

	r := &Receiver{
		conn:     conn,
		commands: make(chan Command, commandBacklog),
		logger:   logger,
	}

	d := osc.NewStandardDispatcher()
	handlers := map[string]osc.HandlerFunc{
		AddressExit: r.handleExit,
		AddressJSON: r.handleSet(control.Toggle{Target: control.TargetJSON}),
	}
	for s := control.Stream(0); s < control.StreamCount; s++ {
		handlers[addressSpout+s.String()] = r.handleSet(control.Toggle{Target: control.TargetSpout, Stream: s})
		handlers[addressNDI+s.String()] = r.handleSet(control.Toggle{Target: control.TargetNDI, Stream: s})
	}
	for addr, h := range handlers {
		if err := d.AddMsgHandler(addr, h); err != nil {
			conn.Close()
			return nil, fmt.Errorf("could not register %s: %w", addr, err)
		}
	}

	r.dispatcher = d

	return r, nil
}

func (r *Receiver) LocalAddr() netip.AddrPort {
	return r.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Commands delivers received commands in arrival order.
func (r *Receiver) Commands() <-chan Command {
	return r.commands
}

// Drain returns the commands queued so far without blocking.
func (r *Receiver) Drain() []Command {
	var cmds []Command
	for {
		select {
		case c := <-r.commands:
			cmds = append(cmds, c)
		default:
			return cmds
		}
	}
}

// Run reads and dispatches packets one at a time until ctx is done or
// the receiver is closed. Malformed packets are dropped.
func (r *Receiver) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		r.Close()
	}()

	buf := make([]byte, maxPacketSize)
	for {
		n, from, err := r.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("context canceled: %w", ctx.Err())
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("could not read osc packet: %w", err)
		}

		packet, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			r.logger.Debug("dropping malformed osc packet", "from", from, "error", err)
			continue
		}
		r.dispatcher.Dispatch(packet)
	}
}

func (r *Receiver) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.conn.Close()
	})
	return err
}

func (r *Receiver) handleExit(msg *osc.Message) {
	on, ok := truthy(msg)
	if !ok {
		r.logger.Warn("ignoring osc message without usable argument", "address", msg.Address)
		return
	}
	if on {
		r.push(Command{Kind: CommandExit})
	}
}

func (r *Receiver) handleSet(t control.Toggle) osc.HandlerFunc {
	return func(msg *osc.Message) {
		on, ok := truthy(msg)
		if !ok {
			r.logger.Warn("ignoring osc message without usable argument", "address", msg.Address)
			return
		}
		r.push(Command{Kind: CommandSet, Toggle: t, On: on})
	}
}

func (r *Receiver) push(c Command) {
	select {
	case r.commands <- c:
	default:
		r.logger.Warn("osc command backlog full, dropping command")
	}
}

// truthy interprets the first argument of msg as a boolean.
func truthy(msg *osc.Message) (bool, bool) {
	if len(msg.Arguments) == 0 {
		return false, false
	}

	switch v := msg.Arguments[0].(type) {
	case int32:
		return v != 0, true
	case int64:
		return v != 0, true
	case float32:
		return v != 0, true
	case float64:
		return v != 0, true
	case bool:
		return v, true
	}
	return false, false
}
