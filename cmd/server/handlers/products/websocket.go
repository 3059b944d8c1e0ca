package products

import (
	"context"
	"errors"
	"time"

	"auction-house/cmd/server/ctxkeys"
	"auction-house/cmd/server/handlers/httperr"
	"auction-house/cmd/server/middlewares"
	"auction-house/internal/logger"
	"auction-house/internal/services/products"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	// WSClosePolicyViolation represents WebSocket close code for policy violation
	WSClosePolicyViolation = 1008

	wsWriteTimeout     = 10 * time.Second
	wsPingInterval     = 25 * time.Second
	wsPingWriteTimeout = 5 * time.Second

	msgFailedToCloseWebSocketConnection = "failed to close WebSocket connection"
)

var (
	errMissingToken    = httperr.E{Status: fiber.StatusUnauthorized, Message: "Missing token"}
	errInvalidToken    = httperr.E{Status: fiber.StatusUnauthorized, Message: "Invalid token"}
	errUpgradeRequired = httperr.BadRequest("WebSocket upgrade required")
	errInvalidWatchID  = httperr.BadRequest("Invalid product id")

	errMissingIdentity = errors.New("token missing identity claims")
)

// Hub is the subscription side of the product event hub
type Hub interface {
	Subscribe(connULID ulid.ULID, productID bson.ObjectID) (*products.Subscriber, func())
}

// WebSocketHandlers streams product events to websocket clients
type WebSocketHandlers struct {
	hub           Hub
	jwtSecret     string
	maxSessionSec int
}

// NewWebSocketHandlers creates new WebSocket handlers
func NewWebSocketHandlers(hub Hub, jwtSecret string, maxSessionSec int) *WebSocketHandlers {
	return &WebSocketHandlers{
		hub:           hub,
		jwtSecret:     jwtSecret,
		maxSessionSec: maxSessionSec,
	}
}

// WSUpgrade authenticates the ?token= query parameter and resolves the
// optional ?product= filter before the connection is upgraded.
func (h *WebSocketHandlers) WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		logger.L().Warn("websocket upgrade required", "handler", "WSUpgrade", "path", c.Path())
		return httperr.Fail(errUpgradeRequired)
	}

	token := c.Query("token")
	if token == "" {
		logger.L().Warn("missing token in websocket upgrade", "handler", "WSUpgrade", "path", c.Path())
		return httperr.Fail(errMissingToken)
	}

	userID, email, err := h.validateJWT(token)
	if err != nil {
		logger.L().Warn("invalid token in websocket upgrade", "handler", "WSUpgrade", "path", c.Path(), "error", err)
		return httperr.Fail(errInvalidToken)
	}

	watch := products.AllProducts
	if raw := c.Query("product"); raw != "" {
		watch, err = bson.ObjectIDFromHex(raw)
		if err != nil {
			logger.L().Info("invalid product filter in websocket upgrade", "handler", "WSUpgrade", "product", raw)
			return httperr.Fail(errInvalidWatchID)
		}
	}

	c.Locals(ctxkeys.UserIDKey, userID.Hex())
	c.Locals(ctxkeys.UserEmailKey, email)
	c.Locals(ctxkeys.WatchProductKey, watch)
	c.Locals(ctxkeys.ParentCtxKey, c.UserContext())

	return c.Next()
}

// wsConnection holds connection-specific data
type wsConnection struct {
	userID   bson.ObjectID
	watch    bson.ObjectID
	connULID ulid.ULID
	connID   string
}

func (conn *wsConnection) logArgs(args ...any) []any {
	return append(args, "user_id", conn.userID.Hex(), "conn_id", conn.connID)
}

// WSProductsStream pushes product events until the client leaves, the
// session cap fires or the hub closes the subscription.
func (h *WebSocketHandlers) WSProductsStream(c *websocket.Conn) {
	conn, parentCtx, err := h.initializeConnection(c)
	if err != nil {
		logger.L().Error("websocket connection rejected", "error", err)
		h.closeConnection(c)
		return
	}

	ctx, cancelCtx := context.WithCancel(parentCtx)
	defer cancelCtx()

	subscriber, cancel := h.hub.Subscribe(conn.connULID, conn.watch)
	defer cancel()

	logger.L().Info("WebSocket connection established", conn.logArgs("product_id", conn.watch.Hex())...)

	sessionTimer := time.AfterFunc(time.Duration(h.maxSessionSec)*time.Second, func() {
		logger.L().Info("WebSocket session timeout", conn.logArgs()...)
		h.sendCloseMessage(c, conn)
		h.closeConnection(c)
		cancelCtx()
	})
	defer sessionTimer.Stop()

	ping := h.startKeepAlive(c, conn)
	defer ping.Stop()

	go h.handleOutgoingMessages(ctx, c, conn, subscriber)

	h.handleIncomingMessages(c, conn)

	logger.L().Info("WebSocket connection closed", conn.logArgs()...)
}

func (h *WebSocketHandlers) initializeConnection(c *websocket.Conn) (*wsConnection, context.Context, error) {
	userIDStr, _ := c.Locals(ctxkeys.UserIDKey).(string)
	userID, err := bson.ObjectIDFromHex(userIDStr)
	if err != nil {
		return nil, nil, errors.Join(errMissingIdentity, err)
	}

	watch, ok := c.Locals(ctxkeys.WatchProductKey).(bson.ObjectID)
	if !ok {
		watch = products.AllProducts
	}

	parentCtx, ok := c.Locals(ctxkeys.ParentCtxKey).(context.Context)
	if !ok {
		parentCtx = context.Background()
	}

	connULID := ulid.Make()
	return &wsConnection{
		userID:   userID,
		watch:    watch,
		connULID: connULID,
		connID:   connULID.String(),
	}, parentCtx, nil
}

func (h *WebSocketHandlers) closeConnection(c *websocket.Conn) {
	if err := c.Close(); err != nil {
		logger.L().Debug(msgFailedToCloseWebSocketConnection, "error", err)
	}
}

func (h *WebSocketHandlers) sendCloseMessage(c *websocket.Conn, conn *wsConnection) {
	err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(WSClosePolicyViolation, "session timeout"))
	if err != nil {
		logger.L().Warn("failed to send close message", conn.logArgs("error", err)...)
	}
}

func (h *WebSocketHandlers) startKeepAlive(c *websocket.Conn, conn *wsConnection) *time.Ticker {
	ping := time.NewTicker(wsPingInterval)
	go func() {
		for range ping.C {
			if err := c.SetWriteDeadline(time.Now().Add(wsPingWriteTimeout)); err != nil {
				return
			}
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.L().Debug("failed to write ping message", conn.logArgs("error", err)...)
				return
			}
		}
	}()
	return ping
}

func (h *WebSocketHandlers) handleOutgoingMessages(ctx context.Context, c *websocket.Conn, conn *wsConnection, subscriber *products.Subscriber) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("panic in WebSocket sender", conn.logArgs("error", r)...)
		}
	}()

	for {
		select {
		case event, ok := <-subscriber.Ch:
			if !ok {
				return
			}
			if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
			if err := c.WriteJSON(event); err != nil {
				logger.L().Warn("failed to write WebSocket message", conn.logArgs("error", err)...)
				return
			}
		case <-subscriber.Done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// handleIncomingMessages drains client frames until the connection ends.
func (h *WebSocketHandlers) handleIncomingMessages(c *websocket.Conn, conn *wsConnection) {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.L().Warn("WebSocket error", conn.logArgs("error", err)...)
			}
			return
		}
	}
}

func (h *WebSocketHandlers) validateJWT(tokenString string) (bson.ObjectID, string, error) {
	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return []byte(h.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return bson.ObjectID{}, "", err
	}

	userIDStr, email, ok := middlewares.IdentityFromClaims(token)
	if !ok {
		return bson.ObjectID{}, "", errMissingIdentity
	}

	userID, err := bson.ObjectIDFromHex(userIDStr)
	if err != nil {
		return bson.ObjectID{}, "", errors.Join(errMissingIdentity, err)
	}
	return userID, email, nil
}

// LogWSConnections logs every WebSocket upgrade attempt. The token is
// verified so the logged user id can't be spoofed.
func LogWSConnections(jwtSecret string) fiber.Handler {
	h := &WebSocketHandlers{jwtSecret: jwtSecret}
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			user := ""
			if userID, _, err := h.validateJWT(c.Query("token")); err == nil {
				user = userID.Hex()
			}
			logger.L().Info("WebSocket upgrade attempt", "ip", c.IP(), "user", user, "path", c.Path())
		}
		return c.Next()
	}
}
