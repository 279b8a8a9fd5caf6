// Package oscio sends skeleton and status messages over OSC and receives
// control commands.
package oscio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

const StatusAddress = "/kv2status/"

// Status texts sent to StatusAddress.
const (
	StatusExit         = "exit"
	StatusClosed       = "closed"
	StatusFieldUpdated = "fieldUpdated"
)

// Client is implemented by *osc.Client.
type Client interface {
	Send(packet osc.Packet) error
}

// Dialer builds a client for host:port.
type Dialer func(host string, port int) Client

func dialOSC(host string, port int) Client {
	return osc.NewClient(host, port)
}

type Sender struct {
	dial Dialer

	mu     sync.Mutex
	client Client
	host   string
	port   int
}

func NewSender(host string, port int) *Sender {
	return NewSenderWithDialer(host, port, dialOSC)
}

func NewSenderWithDialer(host string, port int, dial Dialer) *Sender {
	return &Sender{
		dial:   dial,
		client: dial(host, port),
		host:   host,
		port:   port,
	}
}

func (s *Sender) Addr() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.host, s.port
}

func (s *Sender) Send(msg *osc.Message) error {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	if err := client.Send(msg); err != nil {
		return fmt.Errorf("could not send %s: %w", msg.Address, err)
	}
	return nil
}

// SendAll sends every message, carrying on past failures.
func (s *Sender) SendAll(msgs []*osc.Message) error {
	var errs []error
	for _, msg := range msgs {
		if err := s.Send(msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sender) Status(text string) error {
	return s.Send(osc.NewMessage(StatusAddress, text))
}

// Reconfigure points the sender at a new destination and announces it.
func (s *Sender) Reconfigure(host string, port int) error {
	s.mu.Lock()
	s.client = s.dial(host, port)
	s.host = host
	s.port = port
	s.mu.Unlock()

	return s.Status(StatusFieldUpdated)
}
