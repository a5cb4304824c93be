package viewers

import (
	"context"
	"sync"

	"github.com/prik73/mediasoup-concept-2/internal/jsonrpc"
	"github.com/prik73/mediasoup-concept-2/internal/log"
)

// Tracker keeps per-room viewer membership and pushes the updated count
// to every member whenever it changes. A room with zero viewers is
// dropped from tracking entirely.
type Tracker struct {
	mu         sync.Mutex
	room2conns map[string]map[string]jsonrpc.Conn[viewerContext]
	conn2rooms map[string]map[string]struct{}
	conns      map[string]jsonrpc.Conn[viewerContext]
	logger     *log.Logger
}

func NewTracker(logger *log.Logger) *Tracker {
	return &Tracker{
		room2conns: make(map[string]map[string]jsonrpc.Conn[viewerContext]),
		conn2rooms: make(map[string]map[string]struct{}),
		conns:      make(map[string]jsonrpc.Conn[viewerContext]),
		logger:     logger,
	}
}

func (t *Tracker) AddConn(connID string, conn jsonrpc.Conn[viewerContext]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[connID] = conn
}

// Join adds the connection to a room and broadcasts the new count.
// Joining a room twice is a no-op.
func (t *Tracker) Join(connID, roomName string) {
	t.mu.Lock()
	conn, ok := t.conns[connID]
	if !ok {
		t.mu.Unlock()
		t.logger.Warn("Join for unknown connection", log.String("connId", connID))
		return
	}

	room, ok := t.room2conns[roomName]
	if !ok {
		room = make(map[string]jsonrpc.Conn[viewerContext])
		t.room2conns[roomName] = room
		roomsTracked.Add(context.Background(), 1)
	}
	if _, ok := room[connID]; ok {
		t.mu.Unlock()
		return
	}
	room[connID] = conn

	rooms, ok := t.conn2rooms[connID]
	if !ok {
		rooms = make(map[string]struct{})
		t.conn2rooms[connID] = rooms
	}
	rooms[roomName] = struct{}{}

	targets, count := t.snapshotLocked(roomName)
	t.mu.Unlock()

	viewerJoins.Add(context.Background(), 1)
	t.broadcast(roomName, targets, count)
}

// Leave removes the connection from a room and broadcasts the new count
// to the remaining members.
func (t *Tracker) Leave(connID, roomName string) {
	t.mu.Lock()
	if !t.leaveLocked(connID, roomName) {
		t.mu.Unlock()
		return
	}
	targets, count := t.snapshotLocked(roomName)
	t.mu.Unlock()

	viewerLeaves.Add(context.Background(), 1)
	t.broadcast(roomName, targets, count)
}

// Disconnect leaves every room the connection was in.
func (t *Tracker) Disconnect(connID string) {
	t.mu.Lock()
	rooms := make([]string, 0, len(t.conn2rooms[connID]))
	for roomName := range t.conn2rooms[connID] {
		rooms = append(rooms, roomName)
	}
	type update struct {
		roomName string
		targets  map[string]jsonrpc.Conn[viewerContext]
		count    int
	}
	updates := make([]update, 0, len(rooms))
	for _, roomName := range rooms {
		if t.leaveLocked(connID, roomName) {
			targets, count := t.snapshotLocked(roomName)
			updates = append(updates, update{roomName, targets, count})
		}
	}
	delete(t.conn2rooms, connID)
	delete(t.conns, connID)
	t.mu.Unlock()

	for _, u := range updates {
		t.broadcast(u.roomName, u.targets, u.count)
	}
}

// Count reports the current viewer count for a room.
func (t *Tracker) Count(roomName string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.room2conns[roomName])
}

func (t *Tracker) leaveLocked(connID, roomName string) bool {
	room, ok := t.room2conns[roomName]
	if !ok {
		return false
	}
	if _, ok := room[connID]; !ok {
		return false
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(t.room2conns, roomName)
		roomsTracked.Add(context.Background(), -1)
	}
	if rooms, ok := t.conn2rooms[connID]; ok {
		delete(rooms, roomName)
	}
	return true
}

func (t *Tracker) snapshotLocked(roomName string) (map[string]jsonrpc.Conn[viewerContext], int) {
	room := t.room2conns[roomName]
	targets := make(map[string]jsonrpc.Conn[viewerContext], len(room))
	for connID, conn := range room {
		targets[connID] = conn
	}
	return targets, len(room)
}

func (t *Tracker) broadcast(roomName string, targets map[string]jsonrpc.Conn[viewerContext], count int) {
	for connID, conn := range targets {
		if err := conn.Notify(context.Background(), "viewer-count", count); err != nil {
			t.logger.Error("Failed to push viewer count",
				log.String("room", roomName),
				log.String("connId", connID),
				log.Error(err))
		}
	}
	t.logger.Debug("Viewer count updated",
		log.String("room", roomName),
		log.Int("count", count))
}
