package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/anatolykoptev/go-transcript/internal/engine"
)

// OverlayStrategy routes through an anonymizing overlay network of
// volunteer relays (a Tor SOCKS listener). When a block is detected it
// requests a fresh circuit — a new terminal IP — over the control port
// and tries once more.
type OverlayStrategy struct {
	client      *http.Client
	controlAddr string
	controlPass string
}

// NewOverlayStrategy dials the overlay via the SOCKS5 listener at
// socksAddr. controlAddr may be empty to disable circuit rotation.
func NewOverlayStrategy(socksAddr, controlAddr, controlPass string, timeout time.Duration) (*OverlayStrategy, error) {
	dialer, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("overlay socks dialer: %w", err)
	}
	ctxDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("overlay socks dialer lacks context dialing")
	}
	return &OverlayStrategy{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:     ctxDialer.DialContext,
				IdleConnTimeout: 60 * time.Second,
			},
		},
		controlAddr: controlAddr,
		controlPass: controlPass,
	}, nil
}

func (s *OverlayStrategy) Name() string { return "overlay" }

func (s *OverlayStrategy) Fetch(ctx context.Context, req engine.FetchRequest) (*engine.TranscriptResult, error) {
	res, err := runPipeline(ctx, s.Name(), s.get, req)
	if err == nil || !errors.Is(err, engine.ErrTransportBlocked) || s.controlAddr == "" {
		return res, err
	}

	// The current circuit's exit is burned; rotate and retry once.
	if rerr := s.newCircuit(ctx); rerr != nil {
		slog.Warn("overlay: circuit rotation failed", slog.Any("err", rerr))
		return nil, err
	}
	engine.IncrCircuitRotations()
	slog.Info("overlay: fresh circuit requested, retrying", slog.String("id", req.VideoID))
	return runPipeline(ctx, s.Name(), s.get, req)
}

func (s *OverlayStrategy) get(ctx context.Context, target string) ([]byte, error) {
	return doGet(ctx, s.client, target, limitFor(target))
}

// newCircuit speaks the control-port line protocol: AUTHENTICATE then
// SIGNAL NEWNYM. Replies start with "250" on success.
func (s *OverlayStrategy) newCircuit(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.controlAddr)
	if err != nil {
		return fmt.Errorf("control dial: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(10 * time.Second))
	}

	r := bufio.NewReader(conn)
	send := func(cmd string) error {
		if _, err := fmt.Fprintf(conn, "%s\r\n", cmd); err != nil {
			return err
		}
		line, err := r.ReadString('\n')
		if err != nil {
			return err
		}
		if !strings.HasPrefix(line, "250") {
			return fmt.Errorf("control reply: %s", strings.TrimSpace(line))
		}
		return nil
	}

	if err := send(fmt.Sprintf("AUTHENTICATE %q", s.controlPass)); err != nil {
		return err
	}
	return send("SIGNAL NEWNYM")
}
