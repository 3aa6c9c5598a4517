package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/learnlingo/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	events []Event
	fail   bool
	closed bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.events = append(c.events, v.(Event))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) received() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHub_deliversToUserConnections(t *testing.T) {
	h := NewHub(logger.Nop(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	tab1, tab2, other := &fakeConn{}, &fakeConn{}, &fakeConn{}
	h.Register("u1", tab1)
	h.Register("u1", tab2)
	h.Register("u2", other)
	assert.Equal(t, 2, h.Connections("u1"))

	h.PublishFavorites("u1", []string{"5"})
	h.PublishSession("u1", false)

	require.Eventually(t, func() bool { return len(tab2.received()) == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(tab1.received()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, other.received())

	got := tab1.received()
	assert.Equal(t, EventFavorites, got[0].Type)
	assert.Equal(t, []string{"5"}, got[0].IDs)
	assert.Equal(t, EventSession, got[1].Type)
	require.NotNil(t, got[1].Present)
	assert.False(t, *got[1].Present)

	cancel()
	<-done
	assert.True(t, tab1.isClosed())
	assert.True(t, other.isClosed())
	assert.Equal(t, 0, h.Connections("u1"))
}

func TestHub_dropsBrokenConnections(t *testing.T) {
	h := NewHub(logger.Nop(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	broken := &fakeConn{fail: true}
	h.Register("u1", broken)
	h.PublishFavorites("u1", nil)

	require.Eventually(t, func() bool { return h.Connections("u1") == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
}

func TestHub_publishNeverBlocks(t *testing.T) {
	h := NewHub(logger.Nop(), 1)
	h.PublishFavorites("u1", []string{"1"})
	h.PublishFavorites("u1", []string{"2"})
	h.PublishSession("u1", true)
	assert.Len(t, h.broadcast, 1)
}

func TestHub_unregister(t *testing.T) {
	h := NewHub(logger.Nop(), 1)
	c := &fakeConn{}
	h.Register("u1", c)
	h.Unregister("u1", c)
	h.Unregister("u1", c)
	assert.Equal(t, 0, h.Connections("u1"))
}

type blockingConn struct {
	fakeConn
	entered chan struct{}
	release chan struct{}
}

func (c *blockingConn) WriteJSON(v interface{}) error {
	c.entered <- struct{}{}
	<-c.release
	return c.fakeConn.WriteJSON(v)
}

func TestHub_unregisterWaitsForInFlightWrite(t *testing.T) {
	h := NewHub(logger.Nop(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := &blockingConn{entered: make(chan struct{}, 4), release: make(chan struct{})}
	h.Register("u1", c)
	h.PublishFavorites("u1", []string{"1"})

	select {
	case <-c.entered:
	case <-time.After(time.Second):
		t.Fatal("write never started")
	}

	unregistered := make(chan struct{})
	go func() {
		h.Unregister("u1", c)
		close(unregistered)
	}()

	select {
	case <-unregistered:
		t.Fatal("Unregister returned while a write was in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(c.release)
	select {
	case <-unregistered:
	case <-time.After(time.Second):
		t.Fatal("Unregister did not return after the write finished")
	}
	require.Len(t, c.received(), 1)

	// the handler may release the connection now; later events must not reach it
	h.PublishFavorites("u1", []string{"2"})
	h.PublishSession("u1", true)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, c.received(), 1)
	assert.Empty(t, c.entered)
	assert.False(t, c.isClosed())
}

func TestPeer_noWriteAfterShut(t *testing.T) {
	c := &fakeConn{}
	p := &peer{conn: c}
	p.shut(false)
	wrote, err := p.write(Event{Type: EventFavorites})
	assert.False(t, wrote)
	assert.NoError(t, err)
	assert.Empty(t, c.received())
	assert.False(t, c.isClosed())
}
