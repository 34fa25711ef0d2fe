package probe

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-ping/ping"
)

// Probe result notes
const (
	NoteOK           = "ok"
	NoteTimeout      = "timeout"
	NoteUnreachable  = "unreachable"
	NoteNotAvailable = "probe-not-available"
)

// Result classifies the outcome of a liveness probe. NoteNotAvailable means
// the probing mechanism itself is missing from the environment; callers must
// not treat it as evidence the target is offline.
type Result struct {
	Reachable bool   `json:"reachable"`
	Note      string `json:"note"`
}

// Prober checks whether a device answers an echo request
type Prober interface {
	Probe(ctx context.Context, ip string) Result
}

// ICMPProber sends a single ICMP echo request per probe
type ICMPProber struct {
	timeout    time.Duration
	privileged bool
}

// NewICMPProber creates a prober with the given per-probe timeout
func NewICMPProber(timeout time.Duration) *ICMPProber {
	// Raw sockets need root or CAP_NET_RAW; otherwise fall back to
	// unprivileged UDP ping, which the kernel may still refuse.
	privileged := os.Geteuid() == 0 || canUseRawSocket()
	return &ICMPProber{timeout: timeout, privileged: privileged}
}

// Probe sends one echo request to the address. Wall-clock time is capped at
// the configured timeout plus a one second grace period regardless of what
// the pinger does.
func (p *ICMPProber) Probe(ctx context.Context, ip string) Result {
	pinger, err := ping.NewPinger(ip)
	if err != nil {
		return Result{Reachable: false, Note: "error:resolve"}
	}

	pinger.Count = 1
	pinger.Timeout = p.timeout
	pinger.SetPrivileged(p.privileged)

	ctx, cancel := context.WithTimeout(ctx, p.timeout+time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- pinger.Run()
	}()

	select {
	case <-ctx.Done():
		pinger.Stop()
		return Result{Reachable: false, Note: NoteTimeout}
	case err := <-done:
		if err != nil {
			return Result{Reachable: false, Note: classify(err)}
		}
	}

	if pinger.Statistics().PacketsRecv > 0 {
		return Result{Reachable: true, Note: NoteOK}
	}
	// Echo was sent but nothing came back within the window
	return Result{Reachable: false, Note: NoteTimeout}
}

// classify maps a pinger error to a probe note
func classify(err error) string {
	msg := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, os.ErrPermission),
		strings.Contains(msg, "operation not permitted"),
		strings.Contains(msg, "permission denied"):
		return NoteNotAvailable
	case strings.Contains(msg, "unreachable"):
		return NoteUnreachable
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return NoteTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "error:" + opErr.Op
	}
	return "error:probe"
}

// canUseRawSocket checks if we can use raw sockets
func canUseRawSocket() bool {
	conn, err := net.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
