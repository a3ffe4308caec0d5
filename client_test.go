package bombarena

import (
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c := NewClient("client_1", 4)

	assert.Equal(t, "client_1", c.ID)
	assert.False(t, c.IsRegistered())
	assert.False(t, c.IsClosed())
	assert.Empty(t, c.Nickname())
}

func TestClient_Send(t *testing.T) {
	c := NewClient("client_1", 2)

	require.NoError(t, c.Send([]byte("one")))
	require.NoError(t, c.Send([]byte("two")))
	assert.ErrorIs(t, c.Send([]byte("three")), ErrClientFull)

	assert.Equal(t, []byte("one"), <-c.Outbound())
	assert.Equal(t, []byte("two"), <-c.Outbound())
}

func TestClient_Close(t *testing.T) {
	c := NewClient("client_1", 2)
	require.NoError(t, c.Send([]byte("queued")))

	c.Close()
	c.Close()

	assert.True(t, c.IsClosed())
	assert.ErrorIs(t, c.Send([]byte("late")), ErrClientClosed)

	msg, ok := <-c.Outbound()
	assert.True(t, ok)
	assert.Equal(t, []byte("queued"), msg)

	_, ok = <-c.Outbound()
	assert.False(t, ok)
}

func TestClient_CloseWith(t *testing.T) {
	c := NewClient("client_1", 2)
	code, reason := c.CloseStatus()
	assert.Equal(t, websocket.CloseNormalClosure, code)
	assert.Empty(t, reason)

	c.CloseWith(CloseRoomFull, "room_full")
	c.CloseWith(websocket.CloseGoingAway, "ignored")
	c.Close()

	assert.True(t, c.IsClosed())
	code, reason = c.CloseStatus()
	assert.Equal(t, websocket.CloseTryAgainLater, code)
	assert.Equal(t, "room_full", reason)

	_, ok := <-c.Outbound()
	assert.False(t, ok)
}

func TestClient_ConcurrentSendAndClose(t *testing.T) {
	c := NewClient("client_1", 16)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Send([]byte("x"))
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Close()
	}()
	wg.Wait()

	assert.True(t, c.IsClosed())
}

func TestClient_Register(t *testing.T) {
	c := NewClient("client_1", 1)
	c.register("bob", 3)

	assert.True(t, c.IsRegistered())
	assert.Equal(t, "bob", c.Nickname())
	assert.Equal(t, 3, c.registrationSeq())
}

func TestGenerateIDs(t *testing.T) {
	id := GenerateRoomID()
	assert.Regexp(t, `^room_[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, GenerateRoomID())

	assert.Regexp(t, `^client_`, GenerateClientID())
}
