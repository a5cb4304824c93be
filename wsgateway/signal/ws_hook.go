package signal

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/prik73/mediasoup-concept-2/internal/errors"
	"github.com/prik73/mediasoup-concept-2/internal/jsonrpc"
	wsrpc "github.com/prik73/mediasoup-concept-2/internal/jsonrpc/websocket"
	"github.com/prik73/mediasoup-concept-2/internal/jwt"
	"github.com/prik73/mediasoup-concept-2/internal/log"
	"github.com/prik73/mediasoup-concept-2/sessions"
)

// NewWSHook wires connection lifecycle: peer id assignment, the
// connection-success push, and disconnect cascade into the registry.
// jwtAuth is optional; when nil every connection is accepted.
func NewWSHook(
	connMgr *WSConnManager,
	registry sessions.Registry,
	jwtAuth jwt.Auth,
	msgRate rate.Limit,
	msgBurst int,
	logger *log.Logger,
) wsrpc.ConnectionHooks[signalContext] {
	return &wsHookImpl{
		connMgr:  connMgr,
		registry: registry,
		jwtAuth:  jwtAuth,
		msgRate:  msgRate,
		msgBurst: msgBurst,
		logger:   logger,
	}
}

type wsHookImpl struct {
	connMgr  *WSConnManager
	registry sessions.Registry
	jwtAuth  jwt.Auth
	msgRate  rate.Limit
	msgBurst int
	logger   *log.Logger
}

func (h *wsHookImpl) newContext(reqCtx context.Context) *signalContext {
	var limiter *rate.Limiter
	if h.msgRate > 0 {
		limiter = rate.NewLimiter(h.msgRate, h.msgBurst)
	}
	return &signalContext{
		reqCtx:   reqCtx,
		rlimiter: limiter,
	}
}

func (h *wsHookImpl) OnVerify(r *http.Request) (*signalContext, bool, error) {
	if h.jwtAuth == nil {
		return h.newContext(r.Context()), true, nil
	}

	authAttempts.Add(r.Context(), 1)

	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
	}
	if token == "" {
		authFailures.Add(r.Context(), 1)
		return nil, false, nil
	}

	if _, err := h.jwtAuth.Verify(token); err != nil {
		if errors.Is(err, jwt.ErrInvalidToken) || errors.Is(err, jwt.ErrNoToken) {
			authFailures.Add(r.Context(), 1)
			return nil, false, nil
		}
		return nil, false, err
	}

	return h.newContext(r.Context()), true, nil
}

func (h *wsHookImpl) OnConnect(mctx jsonrpc.MethodContext[signalContext]) {
	sctx := mctx.Get()
	peerID := uuid.New().String()
	sctx.peerID = peerID

	h.connMgr.AddClient(peerID, mctx.Peer())

	wsConnectionsActive.Add(context.Background(), 1)
	wsConnectionsTotal.Add(context.Background(), 1)

	if err := mctx.Peer().Notify(sctx.reqCtx, "connection-success", map[string]any{
		"peerId": peerID,
	}); err != nil {
		h.logger.Error("Failed to push connection-success",
			log.String("peerId", peerID),
			log.Error(err))
	}

	h.logger.Info("Client connected", log.String("peerId", peerID))
}

func (h *wsHookImpl) OnDisconnect(mctx jsonrpc.MethodContext[signalContext], errCode int) {
	sctx := mctx.Get()
	peerID := sctx.peerID

	h.connMgr.RemoveClient(peerID)
	// cascade: close and deregister everything the peer owned
	h.registry.RemovePeer(context.Background(), peerID)

	wsConnectionsActive.Add(context.Background(), -1)
	wsDisconnectsTotal.Add(context.Background(), 1)

	h.logger.Info("Client disconnected",
		log.String("peerId", peerID),
		log.Int("errorCode", errCode))
}
