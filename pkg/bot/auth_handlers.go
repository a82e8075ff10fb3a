package bot

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"scanmyride/pkg/apiclient"
	"scanmyride/pkg/logger"
	"scanmyride/service"
)

func (b *Bot) handleLoginStart(c tele.Context) error {
	s := b.session(c)
	s.State = StateLoginEmail
	s.Email = ""
	return c.Send(msg("login_email"), cancelMenu())
}

func (b *Bot) handleRegisterStart(c tele.Context) error {
	s := b.session(c)
	s.State = StateRegisterName
	s.Name, s.Email = "", ""
	return c.Send(msg("register_name"), cancelMenu())
}

func (b *Bot) handleLogout(c tele.Context) error {
	ws := b.workspace(c)
	ctx, cancel := b.requestContext()
	defer cancel()
	if err := ws.Session.Logout(ctx); err != nil {
		b.Log.Error("failed to clear session", logger.Error(err))
	}
	b.Svc.Close(clientID(c))
	b.resetSession(c)
	return c.Send(msg("logged_out"), guestMenu())
}

// handleAuthText walks the login and registration conversations. A rejected
// attempt keeps what was already collected and asks for one step again.
func (b *Bot) handleAuthText(c tele.Context, s *ChatSession) error {
	text := strings.TrimSpace(c.Text())
	switch s.State {
	case StateLoginEmail:
		s.Email = text
		s.State = StateLoginPassword
		return c.Send(msg("login_password"))
	case StateRegisterName:
		s.Name = text
		s.State = StateRegisterEmail
		return c.Send(msg("register_email"))
	case StateRegisterEmail:
		s.Email = text
		s.State = StateRegisterPassword
		return c.Send(msg("register_pass"))
	}

	// Passwords are not kept in the chat history.
	if err := c.Delete(); err != nil {
		b.Log.Debug("could not delete password message", logger.Error(err))
	}

	ws := b.workspace(c)
	ctx, cancel := b.requestContext()
	defer cancel()

	if s.State == StateLoginPassword {
		res, err := ws.Session.Login(ctx, s.Email, c.Text())
		if err != nil {
			b.Log.Info("login rejected", logger.String("client_id", clientID(c)), logger.Error(err))
			return c.Send("⚠️ " + apiclient.Message(err, msg("login_failed")) + "\n" + msg("login_password"))
		}
		if err := c.Send(fmt.Sprintf(msg("login_ok"), res.User.Name)); err != nil {
			return err
		}
		return b.resume(c, ws, s)
	}

	res, err := ws.Session.Register(ctx, s.Name, s.Email, c.Text())
	if err != nil {
		b.Log.Info("registration rejected", logger.String("client_id", clientID(c)), logger.Error(err))
		s.State = StateRegisterEmail
		return c.Send("⚠️ " + apiclient.Message(err, msg("register_failed")) + "\n" + msg("register_email"))
	}
	if err := c.Send(fmt.Sprintf(msg("register_ok"), res.User.Name)); err != nil {
		return err
	}
	return b.resume(c, ws, s)
}

// resume continues to the route that sent the user to the login view.
func (b *Bot) resume(c tele.Context, ws *service.Workspace, s *ChatSession) error {
	next := s.Next
	s.State, s.Next, s.Email, s.Name = StateIdle, "", "", ""

	st := ws.Session.State()
	if err := c.Send("👇", memberMenu(st.User.IsAdmin())); err != nil {
		return err
	}
	if next == service.RouteAdmin {
		return b.admin(service.RouteAdmin, b.handleAdmin)(c)
	}
	return b.handleDashboard(c, ws)
}

// sessionExpired sends the user back to the login view.
func (b *Bot) sessionExpired(c tele.Context) error {
	b.Svc.Close(clientID(c))
	s := b.session(c)
	s.State, s.Next = StateLoginEmail, service.RouteDashboard
	if err := c.Send(msg("expired"), guestMenu()); err != nil {
		return err
	}
	return c.Send(msg("login_email"))
}

func isExpired(err error) bool {
	return errors.Is(err, service.ErrSessionExpired)
}

func cancelMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(menu.Row(menu.Text(msg("btn_cancel"))))
	return menu
}
