package probe

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"permission sentinel", os.ErrPermission, NoteNotAvailable},
		{"raw socket refused", errors.New("socket: operation not permitted"), NoteNotAvailable},
		{"udp ping refused", errors.New("socket: permission denied"), NoteNotAvailable},
		{"host unreachable", errors.New("sendto: no route to host, destination unreachable"), NoteUnreachable},
		{"network unreachable", errors.New("sendto: network is unreachable"), NoteUnreachable},
		{"read timeout", errors.New("i/o timeout"), NoteTimeout},
		{"context deadline", context.DeadlineExceeded, NoteTimeout},
		{"op error", &net.OpError{Op: "write", Err: errors.New("broken pipe")}, "error:write"},
		{"anything else", errors.New("boom"), "error:probe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestProbe_InvalidAddress(t *testing.T) {
	p := NewICMPProber(100 * time.Millisecond)

	result := p.Probe(context.Background(), "not an address")
	assert.False(t, result.Reachable)
	assert.Equal(t, "error:resolve", result.Note)
}

func TestProbe_BoundedWallClock(t *testing.T) {
	timeout := 200 * time.Millisecond
	p := NewICMPProber(timeout)

	// TEST-NET-1, guaranteed not to answer
	start := time.Now()
	result := p.Probe(context.Background(), "192.0.2.1")
	elapsed := time.Since(start)

	assert.False(t, result.Reachable)
	assert.NotEqual(t, NoteOK, result.Note)
	assert.Less(t, elapsed, timeout+2*time.Second)
}
