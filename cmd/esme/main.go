package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"smppgw/core/lib/config"
	"smppgw/core/lib/logging"
	"smppgw/core/lib/pdu"
	"smppgw/core/lib/session"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	addr := flag.String("addr", "", "the SMSC address (host and port)")
	systemID := flag.String("system-id", "", "the system_id to bind with")
	password := flag.String("password", "", "the password to bind with")
	bind := flag.String("bind", "", "bind type: transmitter, receiver or transceiver")
	to := flag.String("to", "", "submit a message to this address after binding")
	text := flag.String("text", "", "the message to submit")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatal(err, "failed to load configuration")
		}
		cfg = loaded
	}
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Address = *addr
		case "system-id":
			cfg.SystemID = *systemID
		case "password":
			cfg.Password = *password
		case "bind":
			bindType, err := session.ParseBindType(*bind)
			if err != nil {
				flagErr = err
				return
			}
			cfg.BindType = bindType
		}
	})
	if flagErr != nil {
		fatal(flagErr, "invalid flag")
	}

	logging.ApplyEnvOverrides(&cfg.Logging, os.Getenv)
	logging.SetRoot(logging.Build(cfg.Logging))
	log := logging.New("esme")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *to, *text, log); err != nil {
		log.Fatal().Err(err).Msg("session failed")
	}
}

func run(ctx context.Context, cfg config.File, to, text string, log zerolog.Logger) error {
	conn, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info().Str("address", cfg.Address).Msg("connected")

	sess := session.NewStream(conn,
		session.WithConfig(cfg.Session),
		session.WithReceiver(session.ReceiverFunc(func(header pdu.Header, message pdu.DeliverSm) pdu.Status {
			event := log.Info().
				Uint32("sequence", header.SequenceNumber).
				Str("from", message.SourceAddr).
				Str("to", message.DestinationAddr)
			if coding, err := message.Coding(); err == nil {
				event = event.Stringer("alphabet", coding.Alphabet())
			}
			event.Int("length", len(message.ShortMessage)).Msg("message received")
			return pdu.StatusOK
		})),
	)

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return sess.Serve(gctx, conn)
	})
	g.Go(func() error {
		return drive(ctx, sess, cfg, to, text, log)
	})
	return g.Wait()
}

// dial connects to the SMSC. ConnectTimeout bounds only the dial,
// a zero value leaves it to ctx.
func dial(ctx context.Context, cfg config.File) (net.Conn, error) {
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	return dialer.DialContext(ctx, "tcp", cfg.Address)
}

// drive binds, optionally submits a message and unbinds once ctx is done.
func drive(ctx context.Context, sess *session.Session, cfg config.File, to, text string, log zerolog.Logger) error {
	_, err := sess.Bind(ctx, cfg.BindType, pdu.Bind{
		SystemID:   cfg.SystemID,
		Password:   cfg.Password,
		SystemType: cfg.SystemType,
	})
	if err != nil {
		return err
	}

	if to != "" {
		coding, err := pdu.NewGeneralDataCoding(false, false, pdu.MessageClass0, pdu.AlphabetDefault)
		if err != nil {
			return err
		}
		resp, err := sess.SubmitSm(ctx, pdu.SubmitSm{
			DestinationAddr: to,
			DataCoding:      coding.Byte(),
			ShortMessage:    []byte(text),
		})
		if err != nil {
			return err
		}
		log.Info().Str("message_id", resp.MessageID).Msg("message submitted")
	}

	select {
	case <-ctx.Done():
	case <-sess.Done():
		return nil
	}
	unbindCtx, cancel := context.WithTimeout(context.Background(), cfg.Session.TransactionTimeout)
	defer cancel()
	if err := sess.Unbind(unbindCtx); err != nil && !errors.Is(err, session.ErrSessionClosed) {
		return err
	}
	return nil
}

func fatal(err error, msg string) {
	logging.ConfigureRuntime()
	log := logging.New("esme")
	log.Fatal().Err(err).Msg(msg)
}
