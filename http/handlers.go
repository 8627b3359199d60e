// server/http/handlers.go
package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/ViniZap4/nohtz-server/auth"
	"github.com/ViniZap4/nohtz-server/domain"
	"github.com/ViniZap4/nohtz-server/ws"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createFolderRequest struct {
	Name string `json:"name"`
}

type createNoteRequest struct {
	Title    string            `json:"title"`
	FolderID domain.OptionalID `json:"folderId"`
}

type updateNoteRequest struct {
	Title    *string           `json:"title"`
	Content  *string           `json:"content"`
	FolderID domain.OptionalID `json:"folderId"`
}

func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return domain.Validation("Invalid request body")
	}
	return nil
}

func identity(c *fiber.Ctx) domain.Identity {
	id, _ := auth.IdentityFrom(c)
	return id
}

// pathID parses :id. Ids that cannot exist are reported as not found.
func pathID(c *fiber.Ctx, what string) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NotFound(what + " not found")
	}
	return id, nil
}

func (s *Server) setSessionCookie(c *fiber.Ctx, sess *domain.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     s.opts.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) HandleRegister(c *fiber.Ctx) error {
	var req credentials
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sess, err := s.auth.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, sess)
	return c.JSON(fiber.Map{"success": true, "userId": sess.UserID, "username": sess.Username})
}

func (s *Server) HandleLogin(c *fiber.Ctx) error {
	var req credentials
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sess, err := s.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, sess)
	return c.JSON(fiber.Map{"success": true, "userId": sess.UserID, "username": sess.Username})
}

func (s *Server) HandleLogout(c *fiber.Ctx) error {
	if err := s.auth.Logout(c.UserContext(), c.Cookies(s.opts.CookieName)); err != nil {
		return err
	}
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) HandleMe(c *fiber.Ctx) error {
	id, err := s.auth.Whoami(c.UserContext(), c.Cookies(s.opts.CookieName))
	if err != nil {
		return err
	}
	return c.JSON(id)
}

func (s *Server) HandleListFolders(c *fiber.Ctx) error {
	folders, err := s.notes.ListFolders(c.UserContext(), identity(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(folders)
}

func (s *Server) HandleCreateFolder(c *fiber.Ctx) error {
	var req createFolderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	folder, err := s.notes.CreateFolder(c.UserContext(), identity(c).UserID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(folder)
}

func (s *Server) HandleDeleteFolder(c *fiber.Ctx) error {
	id, err := pathID(c, "Folder")
	if err != nil {
		return err
	}
	if err := s.notes.DeleteFolder(c.UserContext(), identity(c).UserID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) HandleListNotes(c *fiber.Ctx) error {
	filter, err := domain.ParseFolderFilter(c.Query("folderId"))
	if err != nil {
		return err
	}
	notes, err := s.notes.ListNotes(c.UserContext(), identity(c).UserID, filter)
	if err != nil {
		return err
	}
	return c.JSON(notes)
}

func (s *Server) HandleGetNote(c *fiber.Ctx) error {
	id, err := pathID(c, "Note")
	if err != nil {
		return err
	}
	note, err := s.notes.GetNote(c.UserContext(), identity(c).UserID, id)
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (s *Server) HandleCreateNote(c *fiber.Ctx) error {
	var req createNoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	note, err := s.notes.CreateNote(c.UserContext(), identity(c).UserID, req.Title, req.FolderID.ID)
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (s *Server) HandleUpdateNote(c *fiber.Ctx) error {
	id, err := pathID(c, "Note")
	if err != nil {
		return err
	}
	var req updateNoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	note, err := s.notes.UpdateNote(c.UserContext(), identity(c).UserID, id, domain.NoteUpdate{
		Title:   req.Title,
		Content: req.Content,
		Folder:  req.FolderID,
	})
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (s *Server) HandleDeleteNote(c *fiber.Ctx) error {
	id, err := pathID(c, "Note")
	if err != nil {
		return err
	}
	if err := s.notes.DeleteNote(c.UserContext(), identity(c).UserID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) HandleExportNote(c *fiber.Ctx) error {
	id, err := pathID(c, "Note")
	if err != nil {
		return err
	}
	note, data, err := s.notes.ExportNote(c.UserContext(), identity(c).UserID, id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="note-%d.md"`, note.ID))
	return c.Send(data)
}

func (s *Server) HandleImportNote(c *fiber.Ctx) error {
	var folderID *int64
	if raw := strings.TrimSpace(c.Query("folderId")); raw != "" && raw != "null" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return domain.Validation("invalid folderId")
		}
		folderID = &id
	}
	if len(c.Body()) == 0 {
		return domain.Validation("Empty document")
	}
	note, err := s.notes.ImportNote(c.UserContext(), identity(c).UserID, c.Body(), folderID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// HandleWebSocketUpgrade hands the caller's user id to the hub and refuses
// plain HTTP requests.
func (s *Server) HandleWebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals(ws.UserIDKey, identity(c).UserID)
	return c.Next()
}
