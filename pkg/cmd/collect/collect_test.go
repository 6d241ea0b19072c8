package collect

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/brevdev/mixpanel-cli/pkg/collector"
	"github.com/brevdev/mixpanel-cli/pkg/command"
	"github.com/brevdev/mixpanel-cli/pkg/mixpanel"
	"github.com/brevdev/mixpanel-cli/pkg/payload"
	"github.com/brevdev/mixpanel-cli/pkg/terminal"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestCollectPrintsPayloads(t *testing.T) {
	var out syncBuffer
	term := terminal.NewWithWriters(&out, &out)
	addr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runCollect(ctx, term, collector.New(zaptest.NewLogger(t), 0), addr)
	}()

	client := mixpanel.NewClient(mixpanel.Config{BaseURL: "http://" + addr, Token: "what"})
	p := payload.Example(command.EngageAdd, "")
	require.Eventually(t, func() bool {
		_, err := client.Engage(context.Background(), command.EngageAdd, p.DistinctID, p.Properties)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte(`"Coins Gathered": 12`))
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "/engage")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestCollectAddrInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close() //nolint:errcheck // test

	var out syncBuffer
	err = runCollect(context.Background(), terminal.NewWithWriters(&out, &out), collector.New(zaptest.NewLogger(t), 0), l.Addr().String())
	assert.Error(t, err)
}
