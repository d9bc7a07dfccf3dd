package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smppgw/core/lib/automaton"
	"smppgw/core/lib/pdu"
	"smppgw/core/lib/pending"
)

// loopback records sent PDUs and lets a test play the peer.
type loopback struct {
	mutex   sync.Mutex
	sent    []pdu.Header
	respond func(header pdu.Header, body []byte)
	err     error
}

func (l *loopback) Send(header pdu.Header, body []byte) error {
	l.mutex.Lock()
	l.sent = append(l.sent, header)
	respond, err := l.respond, l.err
	l.mutex.Unlock()
	if err != nil {
		return err
	}
	if respond != nil {
		go respond(header, body)
	}
	return nil
}

func (l *loopback) headers() []pdu.Header {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]pdu.Header(nil), l.sent...)
}

func (l *loopback) nacks(sequence uint32) int {
	n := 0
	for _, h := range l.headers() {
		if h.CommandID == pdu.CommandGenericNack && h.SequenceNumber == sequence {
			n++
		}
	}
	return n
}

type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() Config {
	return Config{
		TransactionTimeout: time.Minute,
		SweepInterval:      time.Hour,
		BindTimeout:        time.Second,
	}
}

func newTestSession(sender Sender, opts ...Option) *Session {
	base := []Option{WithLogger(zerolog.Nop()), WithConfig(testConfig())}
	return New(sender, append(base, opts...)...)
}

// smsc answers requests the way a well-behaved peer does.
func smsc(t *testing.T, s *Session) func(pdu.Header, []byte) {
	return func(h pdu.Header, _ []byte) {
		var body []byte
		var err error
		switch h.CommandID {
		case pdu.CommandBindTransmitter, pdu.CommandBindReceiver, pdu.CommandBindTransceiver:
			body, err = pdu.BindResp{
				SystemID: "smsc",
				OptionalParameters: []pdu.OptionalParameter{
					{Tag: pdu.TagSCInterfaceVersion, Value: []byte{pdu.InterfaceVersion}},
				},
			}.Bytes()
		case pdu.CommandSubmitSm:
			body, err = pdu.SubmitSmResp{MessageID: "m-1"}.Bytes()
		case pdu.CommandQuerySm:
			body, err = pdu.QuerySmResp{MessageID: "m-1", MessageState: 2}.Bytes()
		case pdu.CommandEnquireLink, pdu.CommandUnbind:
		default:
			return
		}
		assert.Nil(t, err)
		_ = s.HandleIncoming(pdu.Header{CommandID: h.CommandID.Response(), SequenceNumber: h.SequenceNumber}, body)
	}
}

func TestSession_New(t *testing.T) {
	s := newTestSession(&loopback{})
	assert.Equal(t, Open, s.State())
	assert.Equal(t, 0, s.Pending())
	assert.NotEqual(t, s.ID(), newTestSession(&loopback{}).ID())
	assert.EqualValues(t, DefaultBindSequence, s.handler.BindSequence())
}

func TestSession_Transitions(t *testing.T) {
	s := newTestSession(&loopback{})
	require.Nil(t, s.Bound(BindTransceiver))
	assert.Equal(t, BoundTransceiver, s.State())

	err := s.Bound(BindTransmitter)
	assert.ErrorIs(t, err, automaton.ErrBadTransitionState)
	assert.Equal(t, BoundTransceiver, s.State())

	require.Nil(t, s.Unbound())
	assert.Equal(t, Unbound, s.State())
	require.Nil(t, s.Close())
	assert.Equal(t, Closed, s.State())
	require.Nil(t, s.Close())
	assert.ErrorIs(t, s.Unbound(), automaton.ErrBadTransitionState)

	select {
	case <-s.Done():
	default:
		t.Fatal("closed session must be done")
	}
}

func TestSession_OutboundBindsAsReceiver(t *testing.T) {
	s := newTestSession(&loopback{})
	require.Nil(t, s.Outbound())
	assert.Equal(t, Outbound, s.State())
	assert.NotNil(t, s.Bound(BindTransmitter))
	assert.Equal(t, Outbound, s.State())
	require.Nil(t, s.Bound(BindReceiver))
	assert.Equal(t, BoundReceiver, s.State())
}

func TestSession_CloseFailsPending(t *testing.T) {
	s := newTestSession(&loopback{})
	request, err := s.Register(3, pdu.CommandBindTransmitterResp)
	require.Nil(t, err)
	require.Nil(t, s.Close())

	_, err = request.Wait(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Register(4, pdu.CommandSubmitSmResp)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, 0, s.Pending())
}

func TestSession_NextSequenceNumber(t *testing.T) {
	s := newTestSession(&loopback{})
	assert.EqualValues(t, 1, s.NextSequenceNumber())
	assert.EqualValues(t, 2, s.NextSequenceNumber())
	s.sequence = MaxSequenceNumber - 1
	assert.Equal(t, MaxSequenceNumber, s.NextSequenceNumber())
	assert.EqualValues(t, 1, s.NextSequenceNumber())
}

func TestSession_RegisterBind(t *testing.T) {
	s := newTestSession(&loopback{})
	request, err := s.RegisterBind(9, pdu.CommandBindTransmitterResp)
	require.Nil(t, err)
	assert.EqualValues(t, 9, s.handler.BindSequence())

	_, err = s.RegisterBind(10, pdu.CommandBindTransmitterResp)
	assert.ErrorIs(t, err, ErrBindInProgress)

	_, err = s.Register(9, pdu.CommandSubmitSmResp)
	assert.ErrorIs(t, err, ErrDuplicateSequence)

	require.Nil(t, request.Fail(errors.New("rejected")))
	_, ok := s.pending.Resolve(9)
	require.True(t, ok)
	_, err = s.RegisterBind(10, pdu.CommandBindTransmitterResp)
	assert.Nil(t, err)

	require.Nil(t, s.Bound(BindTransmitter))
	_, err = s.RegisterBind(11, pdu.CommandBindTransmitterResp)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestSession_RegisterBindNeedsBindResponse(t *testing.T) {
	s := newTestSession(&loopback{})
	_, err := s.RegisterBind(1, pdu.CommandSubmitSmResp)
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
	assert.Equal(t, 0, s.Pending())
}

func TestSession_BindResponseBindsBeforeNextPdu(t *testing.T) {
	l := &loopback{}
	s := newTestSession(l)
	request, err := s.RegisterBind(1, pdu.CommandBindTransceiverResp)
	require.Nil(t, err)

	resp, err := pdu.BindResp{SystemID: "smsc"}.Bytes()
	require.Nil(t, err)
	require.Nil(t, s.HandleIncoming(pdu.Header{CommandID: pdu.CommandBindTransceiverResp, SequenceNumber: 1}, resp))
	assert.Equal(t, BoundTransceiver, s.State())

	deliver, err := pdu.DeliverSm{SourceAddr: "49170", ShortMessage: []byte("ping")}.Bytes()
	require.Nil(t, err)
	require.Nil(t, s.HandleIncoming(pdu.Header{CommandID: pdu.CommandDeliverSm, SequenceNumber: 7}, deliver))
	assert.Equal(t, []pdu.Header{{CommandID: pdu.CommandDeliverSmResp, SequenceNumber: 7}}, l.headers())

	_, err = request.Wait(context.Background())
	assert.Nil(t, err)
}

func TestSession_FailedBindResponseStaysOpen(t *testing.T) {
	s := newTestSession(&loopback{})
	_, err := s.RegisterBind(1, pdu.CommandBindReceiverResp)
	require.Nil(t, err)

	require.Nil(t, s.HandleIncoming(pdu.Header{
		CommandID:      pdu.CommandBindReceiverResp,
		CommandStatus:  pdu.StatusBindFail,
		SequenceNumber: 1,
	}, nil))
	assert.Equal(t, Open, s.State())
}

func TestSession_BindSubmitUnbind(t *testing.T) {
	ctx := context.Background()
	l := &loopback{}
	s := newTestSession(l)
	l.respond = smsc(t, s)

	resp, err := s.Bind(ctx, BindTransceiver, pdu.Bind{SystemID: "esme", Password: "secret"})
	require.Nil(t, err)
	assert.Equal(t, "smsc", resp.SystemID)
	assert.Equal(t, BoundTransceiver, s.State())

	submitted, err := s.SubmitSm(ctx, pdu.SubmitSm{SourceAddr: "1", DestinationAddr: "2", ShortMessage: []byte("hello")})
	require.Nil(t, err)
	assert.Equal(t, "m-1", submitted.MessageID)

	queried, err := s.QuerySm(ctx, pdu.QuerySm{MessageID: "m-1"})
	require.Nil(t, err)
	assert.EqualValues(t, 2, queried.MessageState)

	require.Nil(t, s.EnquireLink(ctx))
	require.Nil(t, s.Unbind(ctx))
	assert.Equal(t, Closed, s.State())
	assert.Equal(t, 0, s.Pending())

	var commands []pdu.CommandID
	for _, h := range l.headers() {
		commands = append(commands, h.CommandID)
	}
	assert.Equal(t, []pdu.CommandID{
		pdu.CommandBindTransceiver,
		pdu.CommandSubmitSm,
		pdu.CommandQuerySm,
		pdu.CommandEnquireLink,
		pdu.CommandUnbind,
	}, commands)
}

func TestSession_BindRejectedCloses(t *testing.T) {
	l := &loopback{}
	s := newTestSession(l)
	l.respond = func(h pdu.Header, _ []byte) {
		_ = s.HandleIncoming(pdu.Header{
			CommandID:      h.CommandID.Response(),
			CommandStatus:  pdu.StatusInvPaswd,
			SequenceNumber: h.SequenceNumber,
		}, nil)
	}

	_, err := s.Bind(context.Background(), BindTransmitter, pdu.Bind{SystemID: "esme"})
	var negative *NegativeResponseError
	require.True(t, errors.As(err, &negative))
	assert.Equal(t, pdu.StatusInvPaswd, negative.Status)
	assert.Equal(t, Closed, s.State())
}

func TestSession_BindFailsOnUnexpectedPdu(t *testing.T) {
	l := &loopback{}
	s := newTestSession(l)
	l.respond = func(pdu.Header, []byte) {
		_ = s.HandleIncoming(pdu.Header{CommandID: pdu.CommandDeliverSm, SequenceNumber: 77}, nil)
	}

	_, err := s.Bind(context.Background(), BindReceiver, pdu.Bind{SystemID: "esme"})
	var unexpected *UnexpectedPduError
	require.True(t, errors.As(err, &unexpected))
	assert.Equal(t, pdu.CommandDeliverSm, unexpected.Command)
	assert.Equal(t, Closed, s.State())
	assert.Len(t, l.headers(), 1, "no generic_nack is sent before bind")
}

func TestSession_BindTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.BindTimeout = 20 * time.Millisecond
	s := newTestSession(&loopback{}, WithConfig(cfg))

	_, err := s.Bind(context.Background(), BindTransmitter, pdu.Bind{SystemID: "esme"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Closed, s.State())
	assert.Equal(t, 0, s.Pending())
}

func TestSession_RequestChecks(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(&loopback{})
	_, err := s.SubmitSm(ctx, pdu.SubmitSm{})
	assert.ErrorIs(t, err, ErrNotBound)
	assert.ErrorIs(t, s.EnquireLink(ctx), ErrNotBound)
	assert.ErrorIs(t, s.Unbind(ctx), ErrNotBound)
	_, err = s.Request(ctx, pdu.CommandCancelSm, nil)
	assert.ErrorIs(t, err, ErrUnsupportedCommand)

	require.Nil(t, s.Bound(BindReceiver))
	_, err = s.QuerySm(ctx, pdu.QuerySm{MessageID: "m"})
	assert.ErrorIs(t, err, ErrNotBound)

	require.Nil(t, s.Close())
	assert.ErrorIs(t, s.EnquireLink(ctx), ErrSessionClosed)
}

func TestSession_RequestSendFailure(t *testing.T) {
	broken := errors.New("broken pipe")
	s := newTestSession(&loopback{err: broken})
	require.Nil(t, s.Bound(BindTransmitter))

	_, err := s.SubmitSm(context.Background(), pdu.SubmitSm{})
	assert.ErrorIs(t, err, broken)
	assert.Equal(t, 0, s.Pending())
}

func TestSession_RequestCancelled(t *testing.T) {
	s := newTestSession(&loopback{})
	require.Nil(t, s.Bound(BindTransmitter))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.EnquireLink(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, s.Pending())
}

func TestSession_PeerUnbind(t *testing.T) {
	l := &loopback{}
	s := newTestSession(l)
	require.Nil(t, s.Bound(BindTransceiver))
	request, err := s.Register(s.NextSequenceNumber(), pdu.CommandSubmitSmResp)
	require.Nil(t, err)

	require.Nil(t, s.HandleIncoming(pdu.Header{CommandID: pdu.CommandUnbind, SequenceNumber: 500}, nil))

	assert.Equal(t, []pdu.Header{{CommandID: pdu.CommandUnbindResp, SequenceNumber: 500}}, l.headers())
	assert.Equal(t, Closed, s.State())
	_, err = request.Wait(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_Receiver(t *testing.T) {
	var received []pdu.DeliverSm
	l := &loopback{}
	s := newTestSession(l, WithReceiver(ReceiverFunc(func(_ pdu.Header, m pdu.DeliverSm) pdu.Status {
		received = append(received, m)
		return pdu.StatusOK
	})))
	require.Nil(t, s.Bound(BindReceiver))
	body, err := pdu.DeliverSm{SourceAddr: "49170", ShortMessage: []byte("ping")}.Bytes()
	require.Nil(t, err)

	require.Nil(t, s.HandleIncoming(pdu.Header{CommandID: pdu.CommandDeliverSm, SequenceNumber: 8}, body))

	require.Len(t, received, 1)
	assert.Equal(t, "49170", received[0].SourceAddr)
	assert.Equal(t, []pdu.Header{{CommandID: pdu.CommandDeliverSmResp, SequenceNumber: 8}}, l.headers())
}

func TestSession_TimeoutRacesResponse(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cfg := testConfig()
	cfg.TransactionTimeout = time.Second
	l := &loopback{}
	s := newTestSession(l, WithConfig(cfg), WithClock(clock.Now))
	require.Nil(t, s.Bound(BindTransmitter))
	body, err := pdu.SubmitSmResp{MessageID: "late"}.Bytes()
	require.Nil(t, err)

	for i := 0; i < 100; i++ {
		sequence := s.NextSequenceNumber()
		request, err := s.Register(sequence, pdu.CommandSubmitSmResp)
		require.Nil(t, err)
		clock.Advance(2 * time.Second)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.pending.Sweep(clock.Now())
		}()
		go func() {
			defer wg.Done()
			_ = s.HandleIncoming(pdu.Header{CommandID: pdu.CommandSubmitSmResp, SequenceNumber: sequence}, body)
		}()
		wg.Wait()

		value, err, ok := request.Outcome()
		require.True(t, ok)
		if err != nil {
			var timeout *pending.TimeoutError
			assert.True(t, errors.As(err, &timeout))
			assert.Equal(t, 1, l.nacks(sequence), "late response is unmatched")
		} else {
			assert.Equal(t, pdu.SubmitSmResp{MessageID: "late"}, value)
			assert.Equal(t, 0, l.nacks(sequence))
		}
	}
	assert.Equal(t, 0, s.Pending())
}
