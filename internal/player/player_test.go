package player

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	mu     sync.Mutex
	writes [][]byte
}

func (c *recordingConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, data)
	return nil
}

func (c *recordingConn) ReadMessage() (int, []byte, error) { return 0, nil, nil }
func (c *recordingConn) Close() error                      { return nil }

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("p1", &recordingConn{})
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, StatusConnected, p.Status())
	assert.False(t, p.LastSeen().IsZero())
}

func TestSetStatus(t *testing.T) {
	p := NewPlayer("p1", &recordingConn{})
	before := p.LastSeen()

	p.SetStatus(StatusDisconnected)

	assert.Equal(t, StatusDisconnected, p.Status())
	assert.False(t, p.LastSeen().Before(before))
}

func TestSend_ConcurrentWriters(t *testing.T) {
	conn := &recordingConn{}
	p := NewPlayer("p1", conn)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, p.Send(1, []byte("hi")))
		}()
	}
	wg.Wait()

	assert.Len(t, conn.writes, 20)
}
