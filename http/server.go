// server/http/server.go
package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/ViniZap4/nohtz-server/auth"
	"github.com/ViniZap4/nohtz-server/notes"
	"github.com/ViniZap4/nohtz-server/session"
	"github.com/ViniZap4/nohtz-server/ws"
)

type Options struct {
	CookieName   string
	CookieSecure bool
	CORSOrigins  string
	PublicDir    string
}

type Server struct {
	auth     *auth.Service
	notes    *notes.Service
	sessions *session.Manager
	hub      *ws.Hub
	opts     Options
	logger   zerolog.Logger
}

func NewServer(authSvc *auth.Service, notesSvc *notes.Service, sessions *session.Manager, hub *ws.Hub, opts Options, logger zerolog.Logger) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "notes_session"
	}
	return &Server{
		auth:     authSvc,
		notes:    notesSvc,
		sessions: sessions,
		hub:      hub,
		opts:     opts,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

// App builds the fiber application with every route mounted.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "nohtz",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(s.logger),
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestLogger(s.logger))
	if s.opts.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.CORSOrigins,
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "Content-Type",
			AllowCredentials: s.opts.CORSOrigins != "*",
		}))
	}

	requireAuth := auth.Middleware(s.sessions, s.opts.CookieName)

	api := app.Group("/api")
	api.Post("/register", s.HandleRegister)
	api.Post("/login", s.HandleLogin)
	api.Post("/logout", s.HandleLogout)
	api.Get("/me", s.HandleMe)

	api.Get("/folders", requireAuth, s.HandleListFolders)
	api.Post("/folders", requireAuth, s.HandleCreateFolder)
	api.Delete("/folders/:id", requireAuth, s.HandleDeleteFolder)

	api.Get("/notes", requireAuth, s.HandleListNotes)
	api.Post("/notes", requireAuth, s.HandleCreateNote)
	api.Post("/notes/import", requireAuth, s.HandleImportNote)
	api.Get("/notes/:id", requireAuth, s.HandleGetNote)
	api.Get("/notes/:id/export", requireAuth, s.HandleExportNote)
	api.Put("/notes/:id", requireAuth, s.HandleUpdateNote)
	api.Delete("/notes/:id", requireAuth, s.HandleDeleteNote)

	app.Get("/ws", requireAuth, s.HandleWebSocketUpgrade, websocket.New(s.hub.Serve))

	if s.opts.PublicDir != "" {
		app.Static("/", s.opts.PublicDir)
	}
	return app
}
