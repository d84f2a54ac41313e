package controller

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribeconnect/models"
)

type fakeWSConn struct {
	mu     sync.Mutex
	writes []interface{}
	fail   bool
}

func (f *fakeWSConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.writes = append(f.writes, v)
	return nil
}

func (f *fakeWSConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func resetWSClients(t *testing.T) {
	t.Helper()
	wsClientsMu.Lock()
	wsClients = make(map[*wsClient]struct{})
	wsClientsMu.Unlock()
}

func registerTestClient(conn wsConn, userID uint, circleIDs ...uint) *wsClient {
	client := &wsClient{
		conn:    conn,
		userID:  userID,
		circles: make(map[uint]struct{}),
	}
	for _, id := range circleIDs {
		client.circles[id] = struct{}{}
	}
	wsClientsMu.Lock()
	wsClients[client] = struct{}{}
	wsClientsMu.Unlock()
	return client
}

func TestBroadcastNotificationTargetsCircleMembers(t *testing.T) {
	resetWSClients(t)

	member := &fakeWSConn{}
	outsider := &fakeWSConn{}
	registerTestClient(member, 1, 10)
	registerTestClient(outsider, 2, 20)

	BroadcastNotification(models.Notification{CircleID: 10, Message: "hello"})

	require.Equal(t, 1, member.count())
	assert.Equal(t, 0, outsider.count())
}

func TestBroadcastNotificationDropsFailedClients(t *testing.T) {
	resetWSClients(t)

	healthy := &fakeWSConn{}
	broken := &fakeWSConn{fail: true}
	registerTestClient(healthy, 1, 10)
	brokenClient := registerTestClient(broken, 2, 10)

	BroadcastNotification(models.Notification{CircleID: 10, Message: "first"})
	BroadcastNotification(models.Notification{CircleID: 10, Message: "second"})

	assert.Equal(t, 2, healthy.count())

	wsClientsMu.Lock()
	_, stillRegistered := wsClients[brokenClient]
	wsClientsMu.Unlock()
	assert.False(t, stillRegistered)
}

func TestBroadcastNotificationConcurrentWithRegistration(t *testing.T) {
	resetWSClients(t)

	conn := &fakeWSConn{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			BroadcastNotification(models.Notification{CircleID: 10, Message: "ping"})
		}()
	}
	registerTestClient(conn, 1, 10)
	wg.Wait()

	// Every broadcast either saw the client registered or not; none may
	// write outside the registry lock.
	assert.LessOrEqual(t, conn.count(), 8)
}
