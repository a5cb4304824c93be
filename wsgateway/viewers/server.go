package viewers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/prik73/mediasoup-concept-2/internal/jsonrpc"
	wsrpc "github.com/prik73/mediasoup-concept-2/internal/jsonrpc/websocket"
	"github.com/prik73/mediasoup-concept-2/internal/log"
	"github.com/prik73/mediasoup-concept-2/internal/validation"
)

// viewerContext is the per-connection state on the viewer-count channel.
type viewerContext struct {
	connID string
}

// Server handles the viewer-count channel. It is a separate namespace
// from signaling: connections here never touch the session registry.
type Server struct {
	jsonrpc.Handler[viewerContext]
	tracker *Tracker
	logger  *log.Logger
}

func NewServer(handler jsonrpc.Handler[viewerContext], tracker *Tracker, logger *log.Logger) *Server {
	return &Server{
		Handler: handler,
		tracker: tracker,
		logger:  logger,
	}
}

func (s *Server) Open(ctx context.Context) error {
	s.logger.Info("Opening Viewers Server")
	s.register()
	return nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing Viewers Server")
	return nil
}

func (s *Server) register() {
	s.DefAsync("join-room", s.handleJoinRoom)
	s.DefAsync("leave-room", s.handleLeaveRoom)
}

type roomParams struct {
	RoomName string `json:"roomName" validate:"required"`
}

func (s *Server) handleJoinRoom(mctx jsonrpc.MethodContext[viewerContext], params *json.RawMessage, reply jsonrpc.Reply) {
	vctx := mctx.Get()

	var data roomParams
	if err := jsonrpc.ShouldBindParams(params, &data); err != nil {
		reply(nil, jsonrpc.ErrInvalidParams("invalid join-room parameters"))
		return
	}
	if !validation.IsRoomID(data.RoomName) {
		reply(nil, jsonrpc.ErrInvalidParams("invalid room name"))
		return
	}

	s.tracker.Join(vctx.connID, data.RoomName)
	reply(nil, nil)
}

func (s *Server) handleLeaveRoom(mctx jsonrpc.MethodContext[viewerContext], params *json.RawMessage, reply jsonrpc.Reply) {
	vctx := mctx.Get()

	var data roomParams
	if err := jsonrpc.ShouldBindParams(params, &data); err != nil {
		reply(nil, jsonrpc.ErrInvalidParams("invalid leave-room parameters"))
		return
	}

	s.tracker.Leave(vctx.connID, data.RoomName)
	reply(nil, nil)
}

// NewWSHook wires connection lifecycle on the viewer channel into the
// tracker. Disconnect behaves like an explicit leave of every joined
// room.
func NewWSHook(tracker *Tracker, logger *log.Logger) wsrpc.ConnectionHooks[viewerContext] {
	return &wsHook{
		tracker: tracker,
		logger:  logger,
	}
}

type wsHook struct {
	tracker *Tracker
	logger  *log.Logger
}

func (h *wsHook) OnVerify(r *http.Request) (*viewerContext, bool, error) {
	return &viewerContext{
		connID: uuid.New().String(),
	}, true, nil
}

func (h *wsHook) OnConnect(mctx jsonrpc.MethodContext[viewerContext]) {
	vctx := mctx.Get()
	h.tracker.AddConn(vctx.connID, mctx.Peer())
	viewerConnections.Add(context.Background(), 1)

	h.logger.Info("Viewer connected", log.String("connId", vctx.connID))
}

func (h *wsHook) OnDisconnect(mctx jsonrpc.MethodContext[viewerContext], closeCode int) {
	vctx := mctx.Get()
	h.tracker.Disconnect(vctx.connID)
	viewerConnections.Add(context.Background(), -1)

	h.logger.Info("Viewer disconnected",
		log.String("connId", vctx.connID),
		log.Int("closeCode", closeCode))
}
