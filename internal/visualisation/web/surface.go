// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package web renders view trees in a browser. A small page served at / keeps a
// websocket open to /ws, draws every tree it receives and sends the user's
// action back. Actions carry the version of the page they answer so a stale
// tab cannot answer a newer page.
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"footprint/cli/internal/logging"
	"footprint/cli/internal/visualisation"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

//go:embed assets/index.html
var indexHTML []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     sameHost,
}

// sameHost accepts connections from pages served by this surface only.
func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == "http://"+r.Host
}

// ErrStaleVersion is returned for actions addressed to a page that is no longer shown.
var ErrStaleVersion = errors.New("page is no longer shown")

// Surface is a visualisation.Surface served over HTTP and WebSocket.
type Surface struct {
	router *gin.Engine

	mu        sync.Mutex
	tree      *visualisation.Tree
	version   int
	clients   map[*client]struct{}
	unmounted bool
	server    *http.Server
}

// New builds the surface and its routes.
func New() *Surface {
	gin.SetMode(gin.ReleaseMode)
	s := &Surface{router: gin.New(), clients: map[*client]struct{}{}}
	s.router.Use(gin.Recovery())

	s.router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	s.router.GET("/ws", s.handleWS)
	api := s.router.Group("/api")
	api.GET("/page", s.handlePage)
	api.POST("/action", s.handleAction)
	return s
}

// Handler exposes the routes, e.g. for httptest.
func (s *Surface) Handler() http.Handler { return s.router }

// Listen binds addr and serves in the background. It returns the bound address.
func (s *Surface) Listen(addr string) (string, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.With("web").Errorf("serve: %v", err)
		}
	}()
	return lis.Addr().String(), nil
}

// Render makes tree the current page and pushes it to every open tab.
func (s *Surface) Render(tree visualisation.Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return fmt.Errorf("surface unmounted")
	}
	t := tree
	s.tree = &t
	s.version++
	s.broadcastLocked(Frame{Type: FrameRender, Version: s.version, Tree: s.tree})
	return nil
}

// Unmount tells open tabs the session is over, closes them and stops the server.
func (s *Surface) Unmount() error {
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return nil
	}
	s.unmounted = true
	s.tree = nil
	s.broadcastLocked(Frame{Type: FrameUnmount})
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *Surface) current() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return Frame{}, false
	}
	return Frame{Type: FrameRender, Version: s.version, Tree: s.tree}, true
}

// act applies msg to the current page if msg addresses it.
func (s *Surface) act(msg ActionMessage) error {
	s.mu.Lock()
	tree, version := s.tree, s.version
	s.mu.Unlock()

	if tree == nil {
		return errors.New("nothing is shown")
	}
	if msg.Version != version {
		return ErrStaleVersion
	}
	err := visualisation.Dispatch(tree.Body, msg.Action)
	if errors.Is(err, visualisation.ErrResolved) {
		return nil
	}
	return err
}

func (s *Surface) broadcastLocked(f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		logging.With("web").Errorf("encode frame: %v", err)
		return
	}
	for c := range s.clients {
		select {
		case c.send <- b:
		default:
			logging.With("web").Warnf("browser is not keeping up, dropping %s frame", f.Type)
		}
	}
}

func (s *Surface) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// register adds cl unless the surface was unmounted, possibly while cl was
// being upgraded.
func (s *Surface) register(cl *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return false
	}
	s.clients[cl] = struct{}{}
	return true
}

func (s *Surface) handleWS(c *gin.Context) {
	s.mu.Lock()
	gone := s.unmounted
	s.mu.Unlock()
	if gone {
		c.JSON(http.StatusGone, gin.H{"error": "session is over"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.With("web").Debugf("upgrade: %v", err)
		return
	}
	cl := newClient(conn, s)
	if !s.register(cl) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "session is over"), time.Now().Add(WriteWait))
		_ = conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump()

	if f, ok := s.current(); ok {
		cl.enqueue(f)
	}
}

func (s *Surface) handlePage(c *gin.Context) {
	f, ok := s.current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing is shown"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Surface) handleAction(c *gin.Context) {
	var msg ActionMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed action"})
		return
	}
	if err := s.act(msg); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ErrStaleVersion) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, Frame{Type: FrameAck, Version: msg.Version})
}
