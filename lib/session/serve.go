package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"smppgw/core/lib/pdu"
	"smppgw/core/lib/pending"
)

// Serve reads PDUs from conn and handles them until the context is done,
// the session is closed or conn fails. It also expires pending requests
// and probes the peer while bound. conn is closed when Serve stops, which
// is what unblocks the reader. The session is closed when Serve returns.
// A session that was closed, for example by an unbind, ends with nil.
func (s *Session) Serve(ctx context.Context, conn io.ReadCloser) error {
	parent := ctx
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.readLoop(conn)
	})
	g.Go(func() error {
		return pending.NewSweeper(s.pending, s.config.SweepInterval, s.log).Run(ctx)
	})
	if s.config.EnquireLinkInterval > 0 {
		g.Go(func() error {
			return s.keepAlive(ctx, s.config.EnquireLinkInterval)
		})
	}
	g.Go(func() error {
		select {
		case <-s.closed:
		case <-ctx.Done():
		}
		if err := conn.Close(); err != nil {
			s.log.Debug().Err(err).Msg("failed closing connection")
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrSessionClosed
	})
	err := g.Wait()

	select {
	case <-s.closed:
		return nil
	default:
	}
	if closeErr := s.Close(); closeErr != nil {
		s.log.Error().Err(closeErr).Msg("failed closing")
	}
	if parentErr := parent.Err(); parentErr != nil {
		return parentErr
	}
	return err
}

func (s *Session) readLoop(r io.Reader) error {
	for {
		header, body, err := pdu.ReadFrom(r)
		if errors.Is(err, pdu.ErrInvalidCommandLength) {
			// The stream cannot be resynchronised after a bad length.
			if nackErr := s.handler.SendGenericNack(pdu.StatusInvCmdLen, 0); nackErr != nil {
				s.log.Debug().Err(nackErr).Msg("failed sending generic_nack")
			}
			return err
		}
		if err != nil {
			return fmt.Errorf("read pdu: %w", err)
		}
		if err := s.HandleIncoming(header, body); err != nil {
			return err
		}
	}
}

func (s *Session) keepAlive(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if !s.State().IsBound() {
			continue
		}
		if err := s.EnquireLink(ctx); err != nil {
			s.log.Warn().Err(err).Msg("enquire_link failed")
		}
	}
}
