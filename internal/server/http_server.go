package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/oggyb/spotme/internal/app"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // native clients send no Origin
	},
}

// NewRouter serves /healthz and the websocket event stream /v1/events.
func NewRouter(appCtx *app.AppContext) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler(appCtx))
	r.Get("/v1/events", eventsHandler(appCtx))
	return r
}

// NewHTTPServer wraps the router in an http.Server.
func NewHTTPServer(addr string, appCtx *app.AppContext) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(appCtx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// ServeHTTP serves until ctx is done and then shuts down.
func ServeHTTP(ctx context.Context, srv *http.Server) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func healthHandler(appCtx *app.AppContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"db": "ok", "redis": "ok"}
		healthy := true

		if sqlDB, err := appCtx.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["db"] = "unavailable"
			healthy = false
		}
		if err := appCtx.RedisCache.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
			healthy = false
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, checks)
	}
}

// eventsHandler streams the caller's realtime events over a websocket. The
// token comes from the Authorization header or the token query parameter.
func eventsHandler(appCtx *app.AppContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if h, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			token = strings.TrimSpace(h)
		}
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token required"})
			return
		}

		id, err := appCtx.Identity.Verify(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		sess, err := appCtx.Sessions.Resolve(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			appCtx.Logger.Error("websocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sub, err := appCtx.Events.Subscribe(ctx, id.UserID)
		if err != nil {
			appCtx.Logger.Error("event subscription failed", "user", id.UserID, "err", err)
			return
		}
		defer sub.Close()

		log := appCtx.Logger.With("user", id.UserID)
		log.Info("websocket connection established")

		go readPump(conn, cancel, log)
		writePump(ctx, conn, sub.C, sess.Done(), log)
	}
}

// readPump drains client frames so pongs and close frames are processed.
func readPump(conn *websocket.Conn, cancel context.CancelFunc, log *slog.Logger) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket error", "err", err)
			}
			return
		}
	}
}

// writePump forwards events until the client goes away or signedOut closes.
func writePump[T any](ctx context.Context, conn *websocket.Conn, events <-chan T, signedOut <-chan struct{}, log *slog.Logger) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-signedOut:
			log.Info("websocket closed on sign-out")
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "signed out"),
				time.Now().Add(wsWriteWait))
			return
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug("websocket write failed", "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
