package bot

import (
	"time"

	tele "gopkg.in/telebot.v3"

	"scanmyride/service"
)

type wsHandler func(c tele.Context, ws *service.Workspace) error

type guardFunc func(st service.SessionState, intended string) service.Decision

func (b *Bot) member(route string, h wsHandler) tele.HandlerFunc {
	return b.gate(service.MemberGuard, route, h)
}

func (b *Bot) admin(route string, h wsHandler) tele.HandlerFunc {
	return b.gate(service.AdminGuard, route, h)
}

// gate resolves the session before running h. Nothing protected is shown while
// the session is still bootstrapping.
func (b *Bot) gate(guard guardFunc, route string, h wsHandler) tele.HandlerFunc {
	return func(c tele.Context) error {
		ws := b.workspace(c)
		waitSettled(ws)

		d := guard(ws.Session.State(), route)
		switch d.Verdict {
		case service.VerdictAllow:
			return h(c, ws)
		case service.VerdictWait:
			return c.Send(msg("checking"))
		}

		if c.Callback() != nil {
			_ = c.Respond()
		}
		switch d.Target {
		case service.RouteLogin:
			s := b.session(c)
			s.Next = d.Next
			s.State = StateLoginEmail
			if err := c.Send(msg("login_required"), guestMenu()); err != nil {
				return err
			}
			return c.Send(msg("login_email"))
		default:
			if err := c.Send(msg("not_admin")); err != nil {
				return err
			}
			return b.handleDashboard(c, ws)
		}
	}
}

// waitSettled blocks until the session bootstrap is over or settleWait passes.
func waitSettled(ws *service.Workspace) bool {
	t := time.NewTimer(settleWait)
	defer t.Stop()
	select {
	case <-ws.Session.Settled():
		return true
	case <-t.C:
		return false
	}
}
