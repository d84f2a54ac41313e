package controller

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"

	"tribeconnect/config"
	"tribeconnect/models"
	"tribeconnect/utils"
)

// wsConn is the write surface broadcasts need. *websocket.Conn
// satisfies it.
type wsConn interface {
	WriteJSON(v interface{}) error
}

// wsClient is one connected notification listener. The joined set is
// snapshotted at connect time; clients reconnect after joining or leaving
// a circle to pick up the new set.
type wsClient struct {
	conn    wsConn
	userID  uint
	circles map[uint]struct{}
}

var (
	wsClientsMu sync.Mutex
	wsClients   = make(map[*wsClient]struct{})
)

// HandleNotificationsWS streams freshly created notifications to a
// connected member. The client authenticates by sending its access token
// as the first message, since browsers cannot set headers on websocket
// upgrades.
func HandleNotificationsWS(c *websocket.Conn) {
	defer c.Close()

	var hello struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.ReadJSON(&hello); err != nil {
		log.Printf("notifications ws: error reading hello: %v", err)
		return
	}

	claims, err := utils.ParseJWTToken(hello.AccessToken)
	if err != nil {
		_ = c.WriteJSON(map[string]string{"error": "Invalid or expired token"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil || !user.IsActive {
		_ = c.WriteJSON(map[string]string{"error": "User not found"})
		return
	}
	if claims.TokenVersion != user.TokenVersion {
		_ = c.WriteJSON(map[string]string{"error": "Invalid token version"})
		return
	}

	var circles []models.Circle
	if err := config.DB.Preload("Members").Find(&circles).Error; err != nil {
		_ = c.WriteJSON(map[string]string{"error": "Failed to load circle memberships"})
		return
	}

	client := &wsClient{
		conn:    c,
		userID:  user.ID,
		circles: make(map[uint]struct{}),
	}
	for _, id := range utils.JoinedCircleIDs(user.ID, circles) {
		client.circles[id] = struct{}{}
	}

	// Last write from this goroutine. Once the client is registered,
	// only BroadcastNotification (under wsClientsMu) writes to the conn.
	if err := c.WriteJSON(map[string]string{"status": "subscribed"}); err != nil {
		return
	}

	wsClientsMu.Lock()
	wsClients[client] = struct{}{}
	wsClientsMu.Unlock()

	defer func() {
		wsClientsMu.Lock()
		delete(wsClients, client)
		wsClientsMu.Unlock()
	}()

	// Block until the peer goes away; broadcasts happen from other
	// goroutines.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// BroadcastNotification pushes a new notification to every connected
// member of its circle. Write failures just drop that client; it will
// reconcile on its next fetch.
func BroadcastNotification(n models.Notification) {
	wsClientsMu.Lock()
	defer wsClientsMu.Unlock()

	for client := range wsClients {
		if _, ok := client.circles[n.CircleID]; !ok {
			continue
		}
		if err := client.conn.WriteJSON(n); err != nil {
			delete(wsClients, client)
		}
	}
}
