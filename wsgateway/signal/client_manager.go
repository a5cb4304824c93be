package signal

import (
	"context"
	"sync"

	"github.com/prik73/mediasoup-concept-2/internal/jsonrpc"
	"github.com/prik73/mediasoup-concept-2/internal/log"
)

// WSConnManager tracks live peer connections and delivers pushes to
// single peers or fanned out across a room.
type WSConnManager struct {
	mu         sync.RWMutex
	peer2conn  map[string]jsonrpc.Conn[signalContext]
	peer2room  map[string]string
	room2peers map[string]map[string]jsonrpc.Conn[signalContext]
	logger     *log.Logger
}

func NewWSConnMgr(logger *log.Logger) *WSConnManager {
	return &WSConnManager{
		peer2conn:  make(map[string]jsonrpc.Conn[signalContext]),
		peer2room:  make(map[string]string),
		room2peers: make(map[string]map[string]jsonrpc.Conn[signalContext]),
		logger:     logger,
	}
}

// AddClient registers a freshly connected peer. Room indexing happens
// later, once the peer joins.
func (m *WSConnManager) AddClient(peerID string, conn jsonrpc.Conn[signalContext]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.peer2conn[peerID] = conn

	m.logger.Debug("Client connected", log.String("peerId", peerID))
}

// JoinRoom indexes the peer's connection under its room for fanout.
func (m *WSConnManager) JoinRoom(peerID, roomName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.peer2conn[peerID]
	if !ok {
		m.logger.Warn("JoinRoom for unknown peer", log.String("peerId", peerID))
		return
	}

	// a peer is indexed under at most one room
	if prev, ok := m.peer2room[peerID]; ok && prev != roomName {
		if room, ok := m.room2peers[prev]; ok {
			delete(room, peerID)
			if len(room) == 0 {
				delete(m.room2peers, prev)
			}
		}
	}

	m.peer2room[peerID] = roomName
	room, ok := m.room2peers[roomName]
	if !ok {
		room = make(map[string]jsonrpc.Conn[signalContext])
		m.room2peers[roomName] = room
	}
	room[peerID] = conn

	m.logger.Debug("Client joined room",
		log.String("peerId", peerID),
		log.String("room", roomName))
}

func (m *WSConnManager) RemoveClient(peerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if roomName, ok := m.peer2room[peerID]; ok {
		if room, ok := m.room2peers[roomName]; ok {
			delete(room, peerID)
			if len(room) == 0 {
				delete(m.room2peers, roomName)
			}
		}
		delete(m.peer2room, peerID)
	}
	delete(m.peer2conn, peerID)

	m.logger.Debug("Client removed", log.String("peerId", peerID))
}

// NotifyPeer pushes one message to one peer. Unknown peers are logged,
// not errors: the peer may have disconnected a moment ago.
func (m *WSConnManager) NotifyPeer(peerID, method string, data interface{}) {
	m.mu.RLock()
	conn, ok := m.peer2conn[peerID]
	m.mu.RUnlock()
	if !ok {
		m.logger.Warn("Notify skipped, no connection",
			log.String("peerId", peerID),
			log.String("method", method))
		return
	}

	if err := conn.Notify(context.Background(), method, data); err != nil {
		notificationsFailed.Add(context.Background(), 1)
		m.logger.Error("Failed to notify peer",
			log.String("peerId", peerID),
			log.String("method", method),
			log.Error(err))
		return
	}
	notificationsSent.Add(context.Background(), 1)
}

// NotifyRoomExcept fans a push out to every peer indexed under the room
// except one. Delivery order across peers is not guaranteed.
func (m *WSConnManager) NotifyRoomExcept(roomName, exceptPeerID, method string, data interface{}) {
	m.mu.RLock()
	room := m.room2peers[roomName]
	conns := make(map[string]jsonrpc.Conn[signalContext], len(room))
	for peerID, conn := range room {
		if peerID != exceptPeerID {
			conns[peerID] = conn
		}
	}
	m.mu.RUnlock()

	for peerID, conn := range conns {
		if err := conn.Notify(context.Background(), method, data); err != nil {
			notificationsFailed.Add(context.Background(), 1)
			m.logger.Error("Failed to notify room member",
				log.String("room", roomName),
				log.String("peerId", peerID),
				log.String("method", method),
				log.Error(err))
			continue
		}
		notificationsSent.Add(context.Background(), 1)
	}

	m.logger.Debug("Room fanout done",
		log.String("room", roomName),
		log.String("method", method))
}

// NotifyProducerClosed implements sessions.Notifier.
func (m *WSConnManager) NotifyProducerClosed(peerID, producerID string) {
	m.NotifyPeer(peerID, "producer-closed", map[string]any{
		"remoteProducerId": producerID,
	})
}
