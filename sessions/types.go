package sessions

import (
	"context"

	"github.com/prik73/mediasoup-concept-2/internal/mediasoup"
)

// TransportRole distinguishes the single producing transport a peer owns
// from its consuming transports (one per remote producer).
type TransportRole string

const (
	RoleProducing TransportRole = "producing"
	RoleConsuming TransportRole = "consuming"
)

// ConnectionState tracks DTLS connect progress on a transport.
type ConnectionState string

const (
	StateNew        ConnectionState = "new"
	StateConnecting ConnectionState = "connecting"
	StateConnected  ConnectionState = "connected"
	StateClosed     ConnectionState = "closed"
)

// Room groups peers sharing one router on the media worker.
// Members preserves join order.
type Room struct {
	Name            string
	RouterID        string
	RtpCapabilities mediasoup.RtpCapabilities
	Members         []string
}

// Peer is one connected participant. Resource id sets index the ledger
// for O(owned) cascade removal on disconnect.
type Peer struct {
	ID           string
	RoomName     string
	TransportIDs map[string]struct{}
	ProducerIDs  map[string]struct{}
	ConsumerIDs  map[string]struct{}
}

type TransportRecord struct {
	ID          string
	OwnerPeerID string
	RoomName    string
	Role        TransportRole
	State       ConnectionState
}

type ProducerRecord struct {
	ID          string
	OwnerPeerID string
	RoomName    string
	Kind        mediasoup.MediaKind
}

type ConsumerRecord struct {
	ID          string
	OwnerPeerID string
	RoomName    string
	ProducerID  string
	TransportID string
	Paused      bool
}

// Notifier receives pushes the registry needs delivered to a peer's
// signaling channel. The signaling layer implements it.
type Notifier interface {
	NotifyProducerClosed(peerID, producerID string)
}

// Registry is the authoritative ledger of rooms, peers and their media
// endpoints. All mutation goes through these operations.
type Registry interface {
	JoinRoom(ctx context.Context, peerID, roomName string) (*Room, error)
	Room(roomName string) (*Room, bool)
	RoomMembers(roomName string) []string
	PeerRoom(peerID string) (string, bool)

	AddTransport(rec TransportRecord) error
	GetTransport(peerID string, role TransportRole) (*TransportRecord, bool)
	GetTransportByID(transportID string) (*TransportRecord, bool)
	ConnectTransport(ctx context.Context, transportID string, dtlsParameters []byte) error

	AddProducer(rec ProducerRecord) error
	ProducersInRoom(roomName, excludingPeerID string) []string
	ProducerRecords(roomName string) []ProducerRecord
	ProducerCount(roomName string) int
	CloseProducer(ctx context.Context, producerID string)

	AddConsumer(rec ConsumerRecord) error
	GetConsumer(consumerID string) (*ConsumerRecord, bool)
	ResumeConsumer(ctx context.Context, consumerID string) error

	RemovePeer(ctx context.Context, peerID string)

	SetNotifier(n Notifier)
}
