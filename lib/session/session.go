package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smppgw/core/lib/automaton"
	"smppgw/core/lib/logging"
	"smppgw/core/lib/pdu"
	"smppgw/core/lib/pending"
)

// Event triggers a change of the session State.
type Event int

const (
	EventBound Event = iota + 1
	EventOutbound
	EventUnbind
	EventClose
)

func (e Event) String() string {
	switch e {
	case EventBound:
		return "bound"
	case EventOutbound:
		return "outbound"
	case EventUnbind:
		return "unbind"
	case EventClose:
		return "close"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

func states(s ...State) automaton.States {
	out := make(automaton.States, len(s))
	for i, state := range s {
		out[i] = state.automaton()
	}
	return out
}

func lifecycle() automaton.Transitions[Event] {
	return automaton.Transitions[Event]{
		EventBound: {
			{
				At: states(Open),
				Ok: states(BoundTransmitter, BoundReceiver, BoundTransceiver),
				Do: bindFromOpen,
			},
			{
				At: states(Outbound),
				Ok: states(BoundReceiver),
				Do: bindFromOutbound,
			},
		},
		EventOutbound: {
			{At: states(Open), To: Outbound.automaton()},
		},
		EventUnbind: {
			{At: states(BoundTransmitter, BoundReceiver, BoundTransceiver), To: Unbound.automaton()},
		},
		EventClose: {
			{At: states(Open, BoundTransmitter, BoundReceiver, BoundTransceiver, Outbound, Unbound), To: Closed.automaton()},
		},
	}
}

func bindFromOpen(state *automaton.StateHandle, in any) error {
	target := in.(BindType).State()
	if target == 0 {
		return fmt.Errorf("invalid bind type %v", in)
	}
	state.Set(target.automaton())
	return nil
}

func bindFromOutbound(state *automaton.StateHandle, in any) error {
	if in.(BindType) != BindReceiver {
		return fmt.Errorf("an outbound session must bind as receiver, not %v", in)
	}
	state.Set(BoundReceiver.automaton())
	return nil
}

// Sender writes PDUs to the peer. It must be safe for concurrent use.
type Sender interface {
	Send(header pdu.Header, body []byte) error
}

type Option func(*Session)

func WithConfig(config Config) Option {
	return func(s *Session) {
		s.config = config
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

func WithDecoder(decoder pdu.Decoder) Option {
	return func(s *Session) {
		s.decoder = decoder
	}
}

// WithReceiver sets the receiver of deliver_sm messages.
// Without one every message is accepted and discarded.
func WithReceiver(receiver MessageReceiver) Option {
	return func(s *Session) {
		s.receiver = receiver
	}
}

// WithClock replaces the clock of the pending request table.
func WithClock(clock pending.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// Session is one SMPP session of an ESME with an SMSC.
// It owns the state of the session and the requests awaiting a response.
type Session struct {
	id       uuid.UUID
	config   Config
	log      zerolog.Logger
	decoder  pdu.Decoder
	receiver MessageReceiver
	clock    pending.Clock
	sender   Sender
	pending  *pending.Table
	handler  *responder

	sequence uint32

	mutex        sync.Mutex
	state        automaton.State
	machine      *automaton.Machine[Event]
	bindSequence uint32
	bindType     BindType
	bind         *pending.Request
	closed       chan struct{}
}

func New(sender Sender, opts ...Option) *Session {
	s := &Session{
		id:           uuid.New(),
		config:       DefaultConfig(),
		log:          logging.New("session"),
		decoder:      pdu.DefaultDecoder{},
		clock:        time.Now,
		sender:       sender,
		state:        Open.automaton(),
		bindSequence: DefaultBindSequence,
		closed:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.receiver == nil {
		s.receiver = ReceiverFunc(s.discard)
	}
	s.log = s.log.With().Str("session_id", s.id.String()).Logger()
	s.pending = pending.NewTable(s.config.TransactionTimeout, pending.WithClock(s.clock))
	s.handler = &responder{s}
	s.machine = automaton.Compile(&s.state, lifecycle())
	s.machine.OnTransition(func(event Event, from, to automaton.State) {
		s.log.Info().
			Stringer("event", event).
			Stringer("from", State(from)).
			Stringer("to", State(to)).
			Msg("state changed")
	})
	return s
}

func (s *Session) discard(header pdu.Header, message pdu.DeliverSm) pdu.Status {
	s.log.Debug().
		Uint32("sequence", header.SequenceNumber).
		Str("source", message.SourceAddr).
		Str("destination", message.DestinationAddr).
		Msg("discarding message")
	return pdu.StatusOK
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return State(s.machine.State())
}

// Variant returns the behaviour of the current state.
func (s *Session) Variant() Variant {
	return VariantOf(s.State())
}

// Done returns a channel that is closed once the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// Pending returns the number of requests awaiting a response.
func (s *Session) Pending() int {
	return s.pending.Len()
}

// HandleIncoming processes one PDU received from the peer.
// The returned error is a failure to answer the peer.
func (s *Session) HandleIncoming(header pdu.Header, body []byte) error {
	v := s.Variant()
	s.log.Debug().
		Stringer("state", v.State()).
		Stringer("header", header).
		Msg("<-")
	err := Dispatch(v, header, body, s.handler)
	if v.State().IsNegotiating() && header.CommandID.IsResponse() {
		if bindErr := s.completeBind(); bindErr != nil {
			s.log.Error().Err(bindErr).Msg("failed completing bind")
		}
	}
	if err != nil {
		s.log.Error().Err(err).
			Stringer("command", header.CommandID).
			Uint32("sequence", header.SequenceNumber).
			Msg("failed answering pdu")
	}
	return err
}

// NextSequenceNumber returns the next sequence number for a request.
// Sequence numbers run from 1 to MaxSequenceNumber and then wrap.
func (s *Session) NextSequenceNumber() uint32 {
	for {
		current := atomic.LoadUint32(&s.sequence)
		next := current + 1
		if next > MaxSequenceNumber {
			next = 1
		}
		if atomic.CompareAndSwapUint32(&s.sequence, current, next) {
			return next
		}
	}
}

// Register adds a request awaiting a response of the expected command.
func (s *Session) Register(sequenceNumber uint32, expected pdu.CommandID) (*pending.Request, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if State(s.machine.State()) == Closed {
		return nil, ErrSessionClosed
	}
	return s.pending.Register(sequenceNumber, expected)
}

// RegisterBind adds the bind request. Only one may be outstanding,
// PDUs that are illegal before the bind completes fail it.
// Once the response resolves it, the session moves to the bound state
// before the next PDU is handled.
func (s *Session) RegisterBind(sequenceNumber uint32, expected pdu.CommandID) (*pending.Request, error) {
	bindType, ok := bindTypeOf(expected)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not answer a bind", ErrUnsupportedCommand, expected)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	state := State(s.machine.State())
	if state == Closed {
		return nil, ErrSessionClosed
	}
	if !state.IsNegotiating() {
		return nil, fmt.Errorf("%w: state is %s", ErrNotOpen, state)
	}
	if s.bind != nil {
		select {
		case <-s.bind.Resolved():
		default:
			return nil, ErrBindInProgress
		}
	}
	request, err := s.pending.Register(sequenceNumber, expected)
	if err != nil {
		return nil, err
	}
	s.bindSequence = sequenceNumber
	s.bindType = bindType
	s.bind = request
	return request, nil
}

// completeBind moves a negotiating session to the bound state of a bind
// request that succeeded. It does nothing otherwise.
func (s *Session) completeBind() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.bind == nil || !State(s.machine.State()).IsNegotiating() {
		return nil
	}
	if _, err, ok := s.bind.Outcome(); !ok || err != nil {
		return nil
	}
	return s.fireLocked(EventBound, s.bindType)
}

func (s *Session) fire(event Event, in any) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.fireLocked(event, in)
}

func (s *Session) fireLocked(event Event, in any) error {
	if err := s.machine.Fire(event, in); err != nil {
		return fmt.Errorf("session: %s in state %s: %w", event, State(s.machine.State()), err)
	}
	return nil
}

// Bound moves the session to the bound state of bindType.
func (s *Session) Bound(bindType BindType) error {
	return s.fire(EventBound, bindType)
}

// Outbound marks that the peer sent an outbind and awaits a bind_receiver.
func (s *Session) Outbound() error {
	return s.fire(EventOutbound, nil)
}

// Unbound marks that the session is being unbound.
func (s *Session) Unbound() error {
	return s.fire(EventUnbind, nil)
}

// Close closes the session and fails every pending request with
// ErrSessionClosed. Closing a closed session does nothing.
func (s *Session) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if State(s.machine.State()) == Closed {
		return nil
	}
	if err := s.fireLocked(EventClose, nil); err != nil {
		return err
	}
	failed := s.pending.FailAll(ErrSessionClosed)
	close(s.closed)
	if failed > 0 {
		s.log.Warn().Int("requests", failed).Msg("failed pending requests on close")
	}
	return nil
}

func (s *Session) send(header pdu.Header, body []byte) error {
	s.log.Debug().Stringer("header", header).Msg("->")
	return s.sender.Send(header, body)
}

// responder is the ResponseHandler a Session hands to its variants.
type responder struct {
	s *Session
}

func (r *responder) RemovePending(sequenceNumber uint32) (*pending.Request, bool) {
	return r.s.pending.Resolve(sequenceNumber)
}

func (r *responder) SendGenericNack(status pdu.Status, sequenceNumber uint32) error {
	return r.s.send(pdu.Header{
		CommandID:      pdu.CommandGenericNack,
		CommandStatus:  status,
		SequenceNumber: sequenceNumber,
	}, nil)
}

func (r *responder) SendEnquireLinkResp(sequenceNumber uint32) error {
	return r.s.send(pdu.Header{
		CommandID:      pdu.CommandEnquireLinkResp,
		SequenceNumber: sequenceNumber,
	}, nil)
}

func (r *responder) SendUnbindResp(sequenceNumber uint32) error {
	return r.s.send(pdu.Header{
		CommandID:      pdu.CommandUnbindResp,
		SequenceNumber: sequenceNumber,
	}, nil)
}

// SendDeliverSmResp answers with an empty message_id as deliver_sm_resp requires.
func (r *responder) SendDeliverSmResp(status pdu.Status, sequenceNumber uint32) error {
	return r.s.send(pdu.Header{
		CommandID:      pdu.CommandDeliverSmResp,
		CommandStatus:  status,
		SequenceNumber: sequenceNumber,
	}, []byte{0})
}

func (r *responder) AcceptDeliverSm(header pdu.Header, message pdu.DeliverSm) pdu.Status {
	return r.s.receiver.Receive(header, message)
}

func (r *responder) NotifyUnbound() {
	if err := r.s.Unbound(); err != nil {
		r.s.log.Error().Err(err).Msg("failed unbinding")
	}
	if err := r.s.Close(); err != nil {
		r.s.log.Error().Err(err).Msg("failed closing")
	}
}

func (r *responder) BindSequence() uint32 {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()
	return r.s.bindSequence
}

func (r *responder) Decoder() pdu.Decoder {
	return r.s.decoder
}

func (r *responder) Logger() zerolog.Logger {
	return r.s.log.With().Stringer("state", r.s.State()).Logger()
}
