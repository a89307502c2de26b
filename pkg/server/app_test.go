package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VolEdge/pkg/config"
	xhttp "VolEdge/pkg/http"
)

type countingSweeper struct{ n atomic.Int32 }

func (s *countingSweeper) Sweep() int {
	s.n.Add(1)
	return 0
}

func TestRunContextShutsDownOnCancel(t *testing.T) {
	cfg := &config.Config{}
	srv := xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0))
	sw := &countingSweeper{}
	app := New(cfg, srv, sw, nil)
	app.sweepEvery = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	require.Eventually(t, func() bool { return sw.n.Load() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
}
