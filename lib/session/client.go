package session

import (
	"context"
	"fmt"

	"smppgw/core/lib/pdu"
	"smppgw/core/lib/pending"
)

// checkRequest reports whether command may be sent with Request in state.
func checkRequest(command pdu.CommandID, state State) error {
	switch command {
	case pdu.CommandSubmitSm, pdu.CommandQuerySm:
		if !state.IsTransmittable() {
			return fmt.Errorf("%w: cannot send %s in state %s", ErrNotBound, command, state)
		}
	case pdu.CommandEnquireLink:
		if !state.IsBound() {
			return fmt.Errorf("%w: cannot send %s in state %s", ErrNotBound, command, state)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedCommand, command)
	}
	return nil
}

// Request sends a request and waits for the response.
// The value is the decoded response body, or the response header
// for responses without a body.
func (s *Session) Request(ctx context.Context, command pdu.CommandID, body []byte) (any, error) {
	state := s.State()
	if state == Closed {
		return nil, ErrSessionClosed
	}
	if err := checkRequest(command, state); err != nil {
		return nil, err
	}
	sequenceNumber := s.NextSequenceNumber()
	request, err := s.Register(sequenceNumber, command.Response())
	if err != nil {
		return nil, err
	}
	return s.roundTrip(ctx, request, pdu.Header{CommandID: command, SequenceNumber: sequenceNumber}, body)
}

func (s *Session) roundTrip(ctx context.Context, request *pending.Request, header pdu.Header, body []byte) (any, error) {
	if err := s.send(header, body); err != nil {
		if r, ok := s.pending.Resolve(header.SequenceNumber); ok {
			_ = r.Fail(err)
		}
		return nil, fmt.Errorf("send %s: %w", header.CommandID, err)
	}
	value, err := request.Wait(ctx)
	if err != nil && ctx.Err() != nil {
		// The caller gave up. A late response will be reported as unmatched.
		if r, ok := s.pending.Resolve(header.SequenceNumber); ok {
			_ = r.Fail(ctx.Err())
		}
		if v, e, ok := request.Outcome(); ok {
			return v, e
		}
	}
	return value, err
}

// Bind binds the session and moves it to the bound state of bindType.
// A failed bind closes the session.
func (s *Session) Bind(ctx context.Context, bindType BindType, bind pdu.Bind) (pdu.BindResp, error) {
	if bindType.State() == 0 {
		return pdu.BindResp{}, fmt.Errorf("invalid bind type %v", bindType)
	}
	if s.State() == Outbound && bindType != BindReceiver {
		return pdu.BindResp{}, fmt.Errorf("%w: an outbound session binds as receiver", ErrNotOpen)
	}
	body, err := bind.Bytes()
	if err != nil {
		return pdu.BindResp{}, err
	}
	sequenceNumber := s.NextSequenceNumber()
	request, err := s.RegisterBind(sequenceNumber, bindType.Command().Response())
	if err != nil {
		return pdu.BindResp{}, err
	}
	if s.config.BindTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.BindTimeout)
		defer cancel()
	}
	header := pdu.Header{CommandID: bindType.Command(), SequenceNumber: sequenceNumber}
	value, err := s.roundTrip(ctx, request, header, body)
	if err == nil {
		err = s.completeBind()
	}
	if err == nil && s.State() == Closed {
		err = ErrSessionClosed
	}
	if err != nil {
		if closeErr := s.Close(); closeErr != nil {
			s.log.Error().Err(closeErr).Msg("failed closing after bind")
		}
		return pdu.BindResp{}, fmt.Errorf("bind %s: %w", bindType, err)
	}
	resp := value.(pdu.BindResp)
	event := s.log.Info().Str("system_id", resp.SystemID).Stringer("bind_type", bindType)
	if version, ok := resp.SCInterfaceVersion(); ok {
		event = event.Uint8("interface_version", version)
	}
	event.Msg("bound")
	return resp, nil
}

// Unbind sends an unbind, waits for the unbind_resp and closes the session.
func (s *Session) Unbind(ctx context.Context) error {
	state := s.State()
	if !state.IsBound() {
		return fmt.Errorf("%w: cannot unbind in state %s", ErrNotBound, state)
	}
	sequenceNumber := s.NextSequenceNumber()
	request, err := s.Register(sequenceNumber, pdu.CommandUnbindResp)
	if err != nil {
		return err
	}
	if err := s.Unbound(); err != nil {
		if r, ok := s.pending.Resolve(sequenceNumber); ok {
			_ = r.Fail(err)
		}
		return err
	}
	_, err = s.roundTrip(ctx, request, pdu.Header{CommandID: pdu.CommandUnbind, SequenceNumber: sequenceNumber}, nil)
	if closeErr := s.Close(); err == nil {
		err = closeErr
	}
	return err
}

// EnquireLink probes the peer.
func (s *Session) EnquireLink(ctx context.Context) error {
	_, err := s.Request(ctx, pdu.CommandEnquireLink, nil)
	return err
}

func (s *Session) SubmitSm(ctx context.Context, message pdu.SubmitSm) (pdu.SubmitSmResp, error) {
	body, err := message.Bytes()
	if err != nil {
		return pdu.SubmitSmResp{}, err
	}
	value, err := s.Request(ctx, pdu.CommandSubmitSm, body)
	if err != nil {
		return pdu.SubmitSmResp{}, err
	}
	return value.(pdu.SubmitSmResp), nil
}

func (s *Session) QuerySm(ctx context.Context, query pdu.QuerySm) (pdu.QuerySmResp, error) {
	body, err := query.Bytes()
	if err != nil {
		return pdu.QuerySmResp{}, err
	}
	value, err := s.Request(ctx, pdu.CommandQuerySm, body)
	if err != nil {
		return pdu.QuerySmResp{}, err
	}
	return value.(pdu.QuerySmResp), nil
}
