package signal

import (
	"context"
	"encoding/json"

	"github.com/prik73/mediasoup-concept-2/internal/jsonrpc"
	"github.com/prik73/mediasoup-concept-2/internal/log"
	"github.com/prik73/mediasoup-concept-2/internal/mediasoup"
	"github.com/prik73/mediasoup-concept-2/internal/validation"
	"github.com/prik73/mediasoup-concept-2/sessions"
)

// Server maps signaling messages onto registry and media worker
// operations. Domain failures go back through the reply as structured
// {error} payloads so a rejected request never tears down the channel.
type Server struct {
	jsonrpc.Handler[signalContext]
	registry  sessions.Registry
	engine    mediasoup.Client
	connMgr   *WSConnManager
	threshold int
	logger    *log.Logger
}

func NewServer(
	handler jsonrpc.Handler[signalContext],
	registry sessions.Registry,
	engine mediasoup.Client,
	connMgr *WSConnManager,
	producersExistThreshold int,
	logger *log.Logger,
) *Server {
	return &Server{
		Handler:   handler,
		registry:  registry,
		engine:    engine,
		connMgr:   connMgr,
		threshold: producersExistThreshold,
		logger:    logger,
	}
}

func (s *Server) Open(ctx context.Context) error {
	s.logger.Info("Opening Signal Server")
	s.register()
	s.registry.SetNotifier(s.connMgr)
	return nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing Signal Server")
	return nil
}

func (s *Server) register() {
	s.DefAsync("joinRoom", s.handleJoinRoom)
	s.DefAsync("createWebRtcTransport", s.handleCreateWebRtcTransport)
	s.DefAsync("transport-connect", s.handleTransportConnect)
	s.DefAsync("transport-produce", s.handleTransportProduce)
	s.Def("getProducers", s.handleGetProducers)
	s.DefAsync("transport-recv-connect", s.handleTransportRecvConnect)
	s.DefAsync("consume", s.handleConsume)
	s.DefAsync("consumer-resume", s.handleConsumerResume)
}

func errResult(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// errParams matches the client's expectation that transport/consume
// failures arrive nested under params.
func errParams(msg string) map[string]any {
	return map[string]any{"params": map[string]any{"error": msg}}
}

func (s *Server) guard(sctx *signalContext, method string) (string, bool) {
	rpcRequestsTotal.Add(context.Background(), 1)
	if !sctx.allow() {
		s.logger.Warn("Rate limited",
			log.String("peerId", sctx.peerID),
			log.String("method", method))
		return "too many requests", false
	}
	if !sctx.joined {
		return "not joined yet", false
	}
	return "", true
}

func (s *Server) handleJoinRoom(mctx jsonrpc.MethodContext[signalContext], params *json.RawMessage, reply jsonrpc.Reply) {
	sctx := mctx.Get()
	rpcRequestsTotal.Add(context.Background(), 1)
	if !sctx.allow() {
		reply(errResult("too many requests"), nil)
		return
	}

	var data struct {
		RoomName string `json:"roomName" validate:"required"`
	}
	if err := jsonrpc.ShouldBindParams(params, &data); err != nil {
		reply(nil, jsonrpc.ErrInvalidParams("invalid joinRoom parameters"))
		return
	}
	if !validation.IsRoomID(data.RoomName) {
		reply(errResult("invalid room name"), nil)
		return
	}

	room, err := s.registry.JoinRoom(sctx.reqCtx, sctx.peerID, data.RoomName)
	if err != nil {
		rpcRequestsFailed.Add(context.Background(), 1)
		s.logger.Error("Failed to join room",
			log.String("peerId", sctx.peerID),
			log.String("room", data.RoomName),
			log.Error(err))
		reply(errResult("failed to join room"), nil)
		return
	}

	sctx.roomName = room.Name
	sctx.joined = true
	s.connMgr.JoinRoom(sctx.peerID, room.Name)

	reply(map[string]any{
		"rtpCapabilities": room.RtpCapabilities,
	}, nil)
}

func (s *Server) handleCreateWebRtcTransport(mctx jsonrpc.MethodContext[signalContext], params *json.RawMessage, reply jsonrpc.Reply) {
	sctx := mctx.Get()
	if msg, ok := s.guard(sctx, "createWebRtcTransport"); !ok {
		reply(errParams(msg), nil)
		return
	}

	var data struct {
		Consumer bool `json:"consumer"`
	}
	if err := jsonrpc.ShouldBindParams(params, &data); err != nil {
		reply(nil, jsonrpc.ErrInvalidParams("invalid createWebRtcTransport parameters"))
		return
	}

	room, ok := s.registry.Room(sctx.roomName)
	if !ok {
		reply(errParams("room not found"), nil)
		return
	}

	info, err := s.engine.CreateWebRtcTransport(sctx.reqCtx, room.RouterID)
	if err != nil {
		rpcRequestsFailed.Add(context.Background(), 1)
		s.logger.Error("Failed to create webrtc transport",
			log.String("peerId", sctx.peerID),
			log.Error(err))
		reply(errParams("failed to create transport"), nil)
		return
	}

	role := sessions.RoleProducing
	if data.Consumer {
		role = sessions.RoleConsuming
	}
	if err := s.registry.AddTransport(sessions.TransportRecord{
		ID:          info.ID,
		OwnerPeerID: sctx.peerID,
		RoomName:    sctx.roomName,
		Role:        role,
	}); err != nil {
		reply(errParams("failed to register transport"), nil)
		return
	}

	reply(map[string]any{"params": info}, nil)
}

func (s *Server) handleTransportConnect(mctx jsonrpc.MethodContext[signalContext], params *json.RawMessage, reply jsonrpc.Reply) {
	sctx := mctx.Get()
	if msg, ok := s.guard(sctx, "transport-connect"); !ok {
		reply(errResult(msg), nil)
		return
	}

	var data struct {
		DtlsParameters json.RawMessage `json:"dtlsParameters" validate:"required"`
	}
	if err := jsonrpc.ShouldBindParams(params, &data); err != nil {
		reply(nil, jsonrpc.ErrInvalidParams("invalid transport-connect parameters"))
		return
	}

	rec, ok := s.registry.GetTransport(sctx.peerID, sessions.RoleProducing)
	if !ok {
		reply(errResult("no producing transport"), nil)
		return
	}

	if err := s.registry.ConnectTransport(sctx.reqCtx, rec.ID, data.DtlsParameters); err != nil {
		rpcRequestsFailed.Add(context.Background(), 1)
		s.logger.Error("Failed to connect transport",
			log.String("peerId", sctx.peerID),
			log.String("transportId", rec.ID),
			log.Error(err))
		reply(errResult("failed to connect transport"), nil)
		return
	}

	reply(nil, nil)
}

func (s *Server) handleTransportProduce(mctx jsonrpc.MethodContext[signalContext], params *json.RawMessage, reply jsonrpc.Reply) {
	sctx := mctx.Get()
	if msg, ok := s.guard(sctx, "transport-produce"); !ok {
		reply(errResult(msg), nil)
		return
	}

	var data struct {
		Kind          mediasoup.MediaKind     `json:"kind" validate:"required,oneof=audio video"`
		RtpParameters mediasoup.RtpParameters `json:"rtpParameters"`
		AppData       json.RawMessage         `json:"appData"`
	}
	if err := jsonrpc.ShouldBindParams(params, &data); err != nil {
		reply(nil, jsonrpc.ErrInvalidParams("invalid transport-produce parameters"))
		return
	}

	rec, ok := s.registry.GetTransport(sctx.peerID, sessions.RoleProducing)
	if !ok {
		reply(errResult("no producing transport"), nil)
		return
	}

	producerID, err := s.engine.Produce(sctx.reqCtx, rec.ID, data.Kind, data.RtpParameters)
	if err != nil {
		rpcRequestsFailed.Add(context.Background(), 1)
		s.logger.Error("Failed to produce",
			log.String("peerId", sctx.peerID),
			log.String("transportId", rec.ID),
			log.Error(err))
		reply(errResult("failed to produce"), nil)
		return
	}

	if err := s.registry.AddProducer(sessions.ProducerRecord{
		ID:          producerID,
		OwnerPeerID: sctx.peerID,
		RoomName:    sctx.roomName,
		Kind:        data.Kind,
	}); err != nil {
		reply(errResult("failed to register producer"), nil)
		return
	}

	s.connMgr.NotifyRoomExcept(sctx.roomName, sctx.peerID, "new-producer", map[string]any{
		"producerId": producerID,
	})

	reply(map[string]any{
		"id":             producerID,
		"producersExist": s.registry.ProducerCount(sctx.roomName) > s.threshold,
	}, nil)
}

func (s *Server) handleGetProducers(mctx jsonrpc.MethodContext[signalContext], _ *json.RawMessage) (any, error) {
	sctx := mctx.Get()
	if msg, ok := s.guard(sctx, "getProducers"); !ok {
		return errResult(msg), nil
	}

	return s.registry.ProducersInRoom(sctx.roomName, sctx.peerID), nil
}

func (s *Server) handleTransportRecvConnect(mctx jsonrpc.MethodContext[signalContext], params *json.RawMessage, reply jsonrpc.Reply) {
	sctx := mctx.Get()
	if msg, ok := s.guard(sctx, "transport-recv-connect"); !ok {
		reply(errResult(msg), nil)
		return
	}

	var data struct {
		DtlsParameters            json.RawMessage `json:"dtlsParameters" validate:"required"`
		ServerConsumerTransportID string          `json:"serverConsumerTransportId" validate:"required"`
	}
	if err := jsonrpc.ShouldBindParams(params, &data); err != nil {
		reply(nil, jsonrpc.ErrInvalidParams("invalid transport-recv-connect parameters"))
		return
	}

	rec, ok := s.registry.GetTransportByID(data.ServerConsumerTransportID)
	if !ok || rec.OwnerPeerID != sctx.peerID {
		reply(errResult("transport not found"), nil)
		return
	}

	if err := s.registry.ConnectTransport(sctx.reqCtx, rec.ID, data.DtlsParameters); err != nil {
		rpcRequestsFailed.Add(context.Background(), 1)
		s.logger.Error("Failed to connect recv transport",
			log.String("peerId", sctx.peerID),
			log.String("transportId", rec.ID),
			log.Error(err))
		reply(errResult("failed to connect transport"), nil)
		return
	}

	reply(nil, nil)
}

func (s *Server) handleConsume(mctx jsonrpc.MethodContext[signalContext], params *json.RawMessage, reply jsonrpc.Reply) {
	sctx := mctx.Get()
	if msg, ok := s.guard(sctx, "consume"); !ok {
		reply(errParams(msg), nil)
		return
	}

	var data struct {
		RtpCapabilities           json.RawMessage `json:"rtpCapabilities" validate:"required"`
		RemoteProducerID          string          `json:"remoteProducerId" validate:"required"`
		ServerConsumerTransportID string          `json:"serverConsumerTransportId" validate:"required"`
	}
	if err := jsonrpc.ShouldBindParams(params, &data); err != nil {
		reply(nil, jsonrpc.ErrInvalidParams("invalid consume parameters"))
		return
	}

	room, ok := s.registry.Room(sctx.roomName)
	if !ok {
		reply(errParams("room not found"), nil)
		return
	}

	rec, ok := s.registry.GetTransportByID(data.ServerConsumerTransportID)
	if !ok || rec.OwnerPeerID != sctx.peerID {
		reply(errParams("transport not found"), nil)
		return
	}

	canConsume, err := s.engine.CanConsume(sctx.reqCtx, room.RouterID, data.RemoteProducerID, mediasoup.RtpCapabilities(data.RtpCapabilities))
	if err != nil {
		rpcRequestsFailed.Add(context.Background(), 1)
		s.logger.Error("canConsume check failed",
			log.String("peerId", sctx.peerID),
			log.Error(err))
		reply(errParams("cannot consume"), nil)
		return
	}
	if !canConsume {
		reply(errParams("cannot consume"), nil)
		return
	}

	// started paused so the client acks before media flows
	info, err := s.engine.Consume(sctx.reqCtx, rec.ID, data.RemoteProducerID, mediasoup.RtpCapabilities(data.RtpCapabilities), true)
	if err != nil {
		rpcRequestsFailed.Add(context.Background(), 1)
		s.logger.Error("Failed to consume",
			log.String("peerId", sctx.peerID),
			log.String("producerId", data.RemoteProducerID),
			log.Error(err))
		reply(errParams("failed to consume"), nil)
		return
	}

	if err := s.registry.AddConsumer(sessions.ConsumerRecord{
		ID:          info.ID,
		OwnerPeerID: sctx.peerID,
		RoomName:    sctx.roomName,
		ProducerID:  data.RemoteProducerID,
		TransportID: rec.ID,
		Paused:      true,
	}); err != nil {
		reply(errParams("failed to register consumer"), nil)
		return
	}

	reply(map[string]any{
		"params": map[string]any{
			"id":               info.ID,
			"producerId":       info.ProducerID,
			"kind":             info.Kind,
			"rtpParameters":    info.RtpParameters,
			"serverConsumerId": info.ID,
		},
	}, nil)
}

func (s *Server) handleConsumerResume(mctx jsonrpc.MethodContext[signalContext], params *json.RawMessage, reply jsonrpc.Reply) {
	sctx := mctx.Get()
	if msg, ok := s.guard(sctx, "consumer-resume"); !ok {
		reply(errResult(msg), nil)
		return
	}

	var data struct {
		ServerConsumerID string `json:"serverConsumerId" validate:"required"`
	}
	if err := jsonrpc.ShouldBindParams(params, &data); err != nil {
		reply(nil, jsonrpc.ErrInvalidParams("invalid consumer-resume parameters"))
		return
	}

	rec, ok := s.registry.GetConsumer(data.ServerConsumerID)
	if !ok || rec.OwnerPeerID != sctx.peerID {
		reply(errResult("consumer not found"), nil)
		return
	}

	if err := s.registry.ResumeConsumer(sctx.reqCtx, data.ServerConsumerID); err != nil {
		rpcRequestsFailed.Add(context.Background(), 1)
		s.logger.Error("Failed to resume consumer",
			log.String("peerId", sctx.peerID),
			log.String("consumerId", data.ServerConsumerID),
			log.Error(err))
		reply(errResult("failed to resume consumer"), nil)
		return
	}

	reply(nil, nil)
}
