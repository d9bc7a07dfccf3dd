package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
	"golang.org/x/sync/errgroup"

	"smppgw/core/lib/pdu"
)

// serveSmsc plays an SMSC on conn. It answers the bind, sends one
// deliver_sm after the first enquire_link and answers the unbind.
func serveSmsc(conn net.Conn, delivered chan<- pdu.Header) error {
	defer conn.Close()
	write := func(command pdu.CommandID, sequence uint32, body []byte) error {
		return pdu.WriteTo(conn, pdu.Header{CommandID: command, SequenceNumber: sequence}, body)
	}
	sentDeliver := false
	for {
		h, _, err := pdu.ReadFrom(conn)
		if err != nil {
			return fmt.Errorf("smsc read: %w", err)
		}
		switch h.CommandID {
		case pdu.CommandBindTransceiver:
			body, err := pdu.BindResp{SystemID: "smsc"}.Bytes()
			if err != nil {
				return err
			}
			err = write(pdu.CommandBindTransceiverResp, h.SequenceNumber, body)
			if err != nil {
				return err
			}
		case pdu.CommandEnquireLink:
			if err := write(pdu.CommandEnquireLinkResp, h.SequenceNumber, nil); err != nil {
				return err
			}
			if sentDeliver {
				continue
			}
			sentDeliver = true
			body, err := pdu.DeliverSm{SourceAddr: "100", DestinationAddr: "200", ShortMessage: []byte("hello")}.Bytes()
			if err != nil {
				return err
			}
			if err := write(pdu.CommandDeliverSm, 1000, body); err != nil {
				return err
			}
		case pdu.CommandDeliverSmResp:
			delivered <- h
		case pdu.CommandUnbind:
			if err := write(pdu.CommandUnbindResp, h.SequenceNumber, nil); err != nil {
				return err
			}
			_, _, err := pdu.ReadFrom(conn)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("expected the esme to hang up, got %v", err)
		default:
			return fmt.Errorf("smsc got unexpected %s", h.CommandID)
		}
	}
}

func TestSession_Serve(t *testing.T) {
	listener, err := nettest.NewLocalListener("tcp")
	require.Nil(t, err)
	defer listener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	delivered := make(chan pdu.Header, 1)
	received := make(chan pdu.DeliverSm, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		return serveSmsc(conn, delivered)
	})

	conn, err := net.Dial(listener.Addr().Network(), listener.Addr().String())
	require.Nil(t, err)
	s := NewStream(conn,
		WithConfig(testConfig()),
		WithReceiver(ReceiverFunc(func(_ pdu.Header, m pdu.DeliverSm) pdu.Status {
			received <- m
			return pdu.StatusOK
		})),
	)
	g.Go(func() error {
		return s.Serve(ctx, conn)
	})

	resp, err := s.Bind(ctx, BindTransceiver, pdu.Bind{SystemID: "esme", Password: "secret"})
	require.Nil(t, err)
	assert.Equal(t, "smsc", resp.SystemID)
	require.Nil(t, s.EnquireLink(ctx))

	select {
	case m := <-received:
		assert.Equal(t, []byte("hello"), m.ShortMessage)
	case <-ctx.Done():
		t.Fatal("no deliver_sm received")
	}
	select {
	case h := <-delivered:
		assert.EqualValues(t, 1000, h.SequenceNumber)
		assert.Equal(t, pdu.StatusOK, h.CommandStatus)
	case <-ctx.Done():
		t.Fatal("no deliver_sm_resp sent")
	}

	require.Nil(t, s.Unbind(ctx))
	require.Nil(t, g.Wait())
	assert.Equal(t, Closed, s.State())
}

func TestSession_ServeStopsOnContext(t *testing.T) {
	listener, err := nettest.NewLocalListener("tcp")
	require.Nil(t, err)
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			accepted <- conn
		}
	}()
	conn, err := net.Dial(listener.Addr().Network(), listener.Addr().String())
	require.Nil(t, err)
	peer := <-accepted
	defer peer.Close()

	s := NewStream(conn, WithConfig(testConfig()))
	request, err := s.Register(1, pdu.CommandBindTransmitterResp)
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, conn)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
	assert.Equal(t, Closed, s.State())
	_, err = request.Wait(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_ServeStopsBlockedReader(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	s := newTestSession(&loopback{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, r)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop while its reader was blocked")
	}
	assert.Equal(t, Closed, s.State())
}

func TestSession_ServeRejectsBadLength(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	s := NewStream(client, WithConfig(testConfig()))

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(context.Background(), client)
	}()

	_, err := server.Write([]byte{0, 0, 0, 4})
	require.Nil(t, err)
	h, _, err := pdu.ReadFrom(server)
	require.Nil(t, err)
	assert.Equal(t, pdu.CommandGenericNack, h.CommandID)
	assert.Equal(t, pdu.StatusInvCmdLen, h.CommandStatus)

	assert.ErrorIs(t, <-done, pdu.ErrInvalidCommandLength)
	assert.Equal(t, Closed, s.State())
}
