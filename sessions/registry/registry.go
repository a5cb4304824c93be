package registry

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/prik73/mediasoup-concept-2/internal/errors"
	"github.com/prik73/mediasoup-concept-2/internal/log"
	"github.com/prik73/mediasoup-concept-2/internal/mediasoup"
	"github.com/prik73/mediasoup-concept-2/sessions"
)

// registryImpl guards all maps with one mutex. Cross-map invariants
// (peer sets vs ledger entries vs room members) make a single coarse
// lock the simplest way to keep queries consistent; media worker calls
// happen outside the lock.
type registryImpl struct {
	mu         sync.Mutex
	rooms      map[string]*sessions.Room
	peers      map[string]*sessions.Peer
	transports map[string]*sessions.TransportRecord
	producers  map[string]*sessions.ProducerRecord
	consumers  map[string]*sessions.ConsumerRecord

	notifier sessions.Notifier

	sfRouter singleflight.Group
	engine   mediasoup.Client
	logger   *log.Logger
}

func New(engine mediasoup.Client, logger *log.Logger) sessions.Registry {
	if engine == nil {
		panic("engine is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &registryImpl{
		rooms:      make(map[string]*sessions.Room),
		peers:      make(map[string]*sessions.Peer),
		transports: make(map[string]*sessions.TransportRecord),
		producers:  make(map[string]*sessions.ProducerRecord),
		consumers:  make(map[string]*sessions.ConsumerRecord),
		engine:     engine,
		logger:     logger,
	}
}

func (r *registryImpl) SetNotifier(n sessions.Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifier = n
}

func newPeer(peerID string) *sessions.Peer {
	return &sessions.Peer{
		ID:           peerID,
		TransportIDs: make(map[string]struct{}),
		ProducerIDs:  make(map[string]struct{}),
		ConsumerIDs:  make(map[string]struct{}),
	}
}

func (r *registryImpl) JoinRoom(ctx context.Context, peerID, roomName string) (*sessions.Room, error) {
	if roomName == "" {
		return nil, errors.New(sessions.ErrValidation, "room name is empty")
	}
	if peerID == "" {
		return nil, errors.New(sessions.ErrValidation, "peer id is empty")
	}

	r.mu.Lock()
	if peer, ok := r.peers[peerID]; ok && peer.RoomName != "" {
		// a joined peer stays in its room: duplicate joins re-return
		// the existing room no matter which name the request carries
		current := peer.RoomName
		room := r.rooms[current]
		r.mu.Unlock()
		if current != roomName {
			r.logger.Warn("join ignored, peer already in a room",
				log.String("peerId", peerID),
				log.String("room", current),
				log.String("requested", roomName))
		}
		return room, nil
	}
	room, ok := r.rooms[roomName]
	if ok {
		r.attachLocked(peerID, room)
		r.mu.Unlock()
		return room, nil
	}
	r.mu.Unlock()

	// room creation is deduped so concurrent first joiners share one router
	v, err, _ := r.sfRouter.Do(roomName, func() (interface{}, error) {
		r.mu.Lock()
		if room, ok := r.rooms[roomName]; ok {
			r.mu.Unlock()
			return room, nil
		}
		r.mu.Unlock()

		info, err := r.engine.CreateRouter(ctx)
		if err != nil {
			return nil, errors.Wrapf(sessions.ErrRoomNotFound, err, "create router for room %s", roomName)
		}

		room := &sessions.Room{
			Name:            roomName,
			RouterID:        info.ID,
			RtpCapabilities: info.RtpCapabilities,
		}
		r.mu.Lock()
		r.rooms[roomName] = room
		r.mu.Unlock()

		r.logger.Info("room created",
			log.String("room", roomName),
			log.String("routerId", info.ID))
		roomsActive.Add(context.Background(), 1)
		return room, nil
	})
	if err != nil {
		return nil, err
	}
	room = v.(*sessions.Room)

	r.mu.Lock()
	r.attachLocked(peerID, room)
	r.mu.Unlock()
	return room, nil
}

func (r *registryImpl) attachLocked(peerID string, room *sessions.Room) {
	peer, ok := r.peers[peerID]
	if !ok {
		peer = newPeer(peerID)
		r.peers[peerID] = peer
		peersActive.Add(context.Background(), 1)
	}
	peer.RoomName = room.Name

	for _, id := range room.Members {
		if id == peerID {
			return
		}
	}
	room.Members = append(room.Members, peerID)
}

func (r *registryImpl) Room(roomName string) (*sessions.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomName]
	return room, ok
}

func (r *registryImpl) RoomMembers(roomName string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomName]
	if !ok {
		return nil
	}
	members := make([]string, len(room.Members))
	copy(members, room.Members)
	return members
}

func (r *registryImpl) PeerRoom(peerID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	peer, ok := r.peers[peerID]
	if !ok || peer.RoomName == "" {
		return "", false
	}
	return peer.RoomName, true
}

func (r *registryImpl) AddTransport(rec sessions.TransportRecord) error {
	if rec.ID == "" || rec.OwnerPeerID == "" {
		return errors.New(sessions.ErrValidation, "transport record missing id or owner")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	peer := r.ensurePeerLocked(rec.OwnerPeerID)
	if rec.RoomName == "" {
		rec.RoomName = peer.RoomName
	}
	if rec.State == "" {
		rec.State = sessions.StateNew
	}
	r.transports[rec.ID] = &rec
	peer.TransportIDs[rec.ID] = struct{}{}
	return nil
}

// ensurePeerLocked auto-creates a minimal peer entry. A correct caller
// always has one already; this keeps a racing add from panicking.
func (r *registryImpl) ensurePeerLocked(peerID string) *sessions.Peer {
	peer, ok := r.peers[peerID]
	if !ok {
		r.logger.Warn("auto-creating peer entry", log.String("peerId", peerID))
		peer = newPeer(peerID)
		r.peers[peerID] = peer
		peersActive.Add(context.Background(), 1)
	}
	return peer
}

func (r *registryImpl) GetTransport(peerID string, role sessions.TransportRole) (*sessions.TransportRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	peer, ok := r.peers[peerID]
	if !ok {
		return nil, false
	}
	for id := range peer.TransportIDs {
		rec, ok := r.transports[id]
		if ok && rec.Role == role && rec.State != sessions.StateClosed {
			cp := *rec
			return &cp, true
		}
	}
	return nil, false
}

func (r *registryImpl) GetTransportByID(transportID string) (*sessions.TransportRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.transports[transportID]
	if !ok {
		return nil, false
	}
	cp := *rec
	return &cp, true
}

func (r *registryImpl) ConnectTransport(ctx context.Context, transportID string, dtlsParameters []byte) error {
	r.mu.Lock()
	rec, ok := r.transports[transportID]
	if !ok {
		r.mu.Unlock()
		return errors.Newf(sessions.ErrNotFound, "transport %s not found", transportID)
	}
	switch rec.State {
	case sessions.StateConnected:
		// duplicate connect is a no-op success
		r.mu.Unlock()
		return nil
	case sessions.StateClosed:
		r.mu.Unlock()
		return errors.Newf(sessions.ErrTransportState, "transport %s is closed", transportID)
	}
	rec.State = sessions.StateConnecting
	r.mu.Unlock()

	if err := r.engine.ConnectWebRtcTransport(ctx, transportID, dtlsParameters); err != nil {
		r.mu.Lock()
		if rec, ok := r.transports[transportID]; ok && rec.State == sessions.StateConnecting {
			rec.State = sessions.StateNew
		}
		r.mu.Unlock()
		return errors.Wrapf(sessions.ErrEngineFailure, err, "connect transport %s", transportID)
	}

	r.mu.Lock()
	if rec, ok := r.transports[transportID]; ok && rec.State == sessions.StateConnecting {
		rec.State = sessions.StateConnected
	}
	r.mu.Unlock()
	return nil
}

func (r *registryImpl) AddProducer(rec sessions.ProducerRecord) error {
	if rec.ID == "" || rec.OwnerPeerID == "" {
		return errors.New(sessions.ErrValidation, "producer record missing id or owner")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	peer := r.ensurePeerLocked(rec.OwnerPeerID)
	if rec.RoomName == "" {
		rec.RoomName = peer.RoomName
	}
	r.producers[rec.ID] = &rec
	peer.ProducerIDs[rec.ID] = struct{}{}
	producersActive.Add(context.Background(), 1)
	return nil
}

func (r *registryImpl) ProducersInRoom(roomName, excludingPeerID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := []string{}
	for id, rec := range r.producers {
		if rec.RoomName == roomName && rec.OwnerPeerID != excludingPeerID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *registryImpl) ProducerRecords(roomName string) []sessions.ProducerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := []sessions.ProducerRecord{}
	for _, rec := range r.producers {
		if rec.RoomName == roomName {
			recs = append(recs, *rec)
		}
	}
	return recs
}

func (r *registryImpl) ProducerCount(roomName string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, rec := range r.producers {
		if rec.RoomName == roomName {
			n++
		}
	}
	return n
}

func (r *registryImpl) AddConsumer(rec sessions.ConsumerRecord) error {
	if rec.ID == "" || rec.OwnerPeerID == "" {
		return errors.New(sessions.ErrValidation, "consumer record missing id or owner")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	peer := r.ensurePeerLocked(rec.OwnerPeerID)
	if rec.RoomName == "" {
		rec.RoomName = peer.RoomName
	}
	r.consumers[rec.ID] = &rec
	peer.ConsumerIDs[rec.ID] = struct{}{}
	consumersActive.Add(context.Background(), 1)
	return nil
}

func (r *registryImpl) GetConsumer(consumerID string) (*sessions.ConsumerRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.consumers[consumerID]
	if !ok {
		return nil, false
	}
	cp := *rec
	return &cp, true
}

func (r *registryImpl) ResumeConsumer(ctx context.Context, consumerID string) error {
	r.mu.Lock()
	rec, ok := r.consumers[consumerID]
	r.mu.Unlock()
	if !ok {
		return errors.Newf(sessions.ErrNotFound, "consumer %s not found", consumerID)
	}

	if err := r.engine.ResumeConsumer(ctx, consumerID); err != nil {
		return errors.Wrapf(sessions.ErrEngineFailure, err, "resume consumer %s", consumerID)
	}

	r.mu.Lock()
	if rec, ok = r.consumers[consumerID]; ok {
		rec.Paused = false
	}
	r.mu.Unlock()
	return nil
}

// engineOp is a deferred media worker close collected under the lock and
// executed after release. Failures are logged only.
type engineOp struct {
	what string
	id   string
	call func(ctx context.Context, id string) error
}

// notification is a producer-closed push owed to a consumer's owner.
type notification struct {
	peerID     string
	producerID string
}

func (r *registryImpl) CloseProducer(ctx context.Context, producerID string) {
	r.mu.Lock()
	ops, notes := r.closeProducerLocked(producerID)
	notifier := r.notifier
	r.mu.Unlock()

	r.runEngineOps(ctx, ops)
	r.deliver(notifier, notes)
}

// closeProducerLocked removes the producer, every consumer feeding off
// it and each such consumer's transport. Ledger stays consistent within
// the lock; worker closes and pushes are returned for later execution.
func (r *registryImpl) closeProducerLocked(producerID string) ([]engineOp, []notification) {
	rec, ok := r.producers[producerID]
	if !ok {
		return nil, nil
	}

	ops := []engineOp{{what: "producer", id: producerID, call: r.engine.CloseProducer}}
	notes := []notification{}

	delete(r.producers, producerID)
	if owner, ok := r.peers[rec.OwnerPeerID]; ok {
		delete(owner.ProducerIDs, producerID)
	}
	producersActive.Add(context.Background(), -1)

	for consumerID, c := range r.consumers {
		if c.ProducerID != producerID {
			continue
		}
		notes = append(notes, notification{peerID: c.OwnerPeerID, producerID: producerID})
		ops = append(ops, engineOp{what: "consumer", id: consumerID, call: r.engine.CloseConsumer})

		if t, ok := r.transports[c.TransportID]; ok {
			t.State = sessions.StateClosed
			delete(r.transports, c.TransportID)
			ops = append(ops, engineOp{what: "transport", id: c.TransportID, call: r.engine.CloseTransport})
		}

		if owner, ok := r.peers[c.OwnerPeerID]; ok {
			delete(owner.ConsumerIDs, consumerID)
			delete(owner.TransportIDs, c.TransportID)
		}
		delete(r.consumers, consumerID)
		consumersActive.Add(context.Background(), -1)
	}

	return ops, notes
}

func (r *registryImpl) RemovePeer(ctx context.Context, peerID string) {
	r.mu.Lock()
	peer, ok := r.peers[peerID]
	if !ok {
		r.mu.Unlock()
		return
	}

	ops := []engineOp{}
	notes := []notification{}

	for producerID := range peer.ProducerIDs {
		o, n := r.closeProducerLocked(producerID)
		ops = append(ops, o...)
		notes = append(notes, n...)
	}

	for consumerID := range peer.ConsumerIDs {
		if _, ok := r.consumers[consumerID]; !ok {
			continue
		}
		delete(r.consumers, consumerID)
		consumersActive.Add(context.Background(), -1)
		ops = append(ops, engineOp{what: "consumer", id: consumerID, call: r.engine.CloseConsumer})
	}

	for transportID := range peer.TransportIDs {
		rec, ok := r.transports[transportID]
		if !ok {
			continue
		}
		rec.State = sessions.StateClosed
		delete(r.transports, transportID)
		ops = append(ops, engineOp{what: "transport", id: transportID, call: r.engine.CloseTransport})
	}

	if room, ok := r.rooms[peer.RoomName]; ok {
		members := room.Members[:0]
		for _, id := range room.Members {
			if id != peerID {
				members = append(members, id)
			}
		}
		room.Members = members
	}

	delete(r.peers, peerID)
	peersActive.Add(context.Background(), -1)
	notifier := r.notifier
	r.mu.Unlock()

	r.logger.Info("peer removed", log.String("peerId", peerID))
	r.runEngineOps(ctx, ops)
	r.deliver(notifier, notes)
}

func (r *registryImpl) runEngineOps(ctx context.Context, ops []engineOp) {
	for _, op := range ops {
		if err := op.call(ctx, op.id); err != nil {
			r.logger.Warn("failed to close worker resource",
				log.String("what", op.what),
				log.String("id", op.id),
				log.Error(err))
		}
	}
}

func (r *registryImpl) deliver(notifier sessions.Notifier, notes []notification) {
	if notifier == nil {
		return
	}
	for _, n := range notes {
		notifier.NotifyProducerClosed(n.peerID, n.producerID)
	}
}
