package bot

import (
	tele "gopkg.in/telebot.v3"

	"scanmyride/pkg/logger"
	"scanmyride/service"
)

func (b *Bot) handleAdmin(c tele.Context, ws *service.Workspace) error {
	view := ws.Admin()
	ctx, cancel := b.requestContext()
	defer cancel()
	if err := view.Load(ctx); err != nil {
		b.Log.Warning("admin panel unavailable", logger.String("client_id", clientID(c)), logger.Error(err))
		return c.Send("⚠️ " + view.Message())
	}
	return c.Send(renderAdmin(view.Summary()))
}
