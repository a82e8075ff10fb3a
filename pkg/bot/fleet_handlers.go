package bot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"scanmyride/pkg/apiclient"
	"scanmyride/pkg/logger"
	"scanmyride/pkg/models"
	"scanmyride/service"
)

// maxImageBytes caps pictures pulled from Telegram before they are attached.
const maxImageBytes = 10 << 20

var errPictureTooLarge = errors.New("picture exceeds 10 MB")

// readPicture reads a whole picture, refusing anything over maxImageBytes
// instead of cutting it short.
func readPicture(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, errPictureTooLarge
	}
	return data, nil
}

// handleDashboard refetches the fleet on every visit so profiles saved
// elsewhere show up.
func (b *Bot) handleDashboard(c tele.Context, ws *service.Workspace) error {
	ctx, cancel := b.requestContext()
	defer cancel()
	if err := ws.Fleet.LoadFleet(ctx); err != nil {
		if isExpired(err) {
			return b.sessionExpired(c)
		}
		b.Log.Error("failed to load fleet", logger.String("client_id", clientID(c)), logger.Error(err))
		return c.Send("⚠️ " + apiclient.Message(err, msg("load_failed")))
	}
	return b.sendDraft(c, ws)
}

func (b *Bot) sendDraft(c tele.Context, ws *service.Workspace) error {
	draft := ws.Fleet.Draft()
	profiles := ws.Fleet.Profiles()
	active := ws.Fleet.ActiveIndex()
	link := ""
	if draft.HasPublicURL() {
		link = b.Svc.PublicURL(draft.UniqueID)
	}
	text := renderDraft(draft, active, len(profiles), link, ws.Fleet.Pending())
	return c.Send(text, fleetKeyboard(profiles, active, draft), tele.NoPreview)
}

func (b *Bot) handleSwitch(c tele.Context, ws *service.Workspace) error {
	idx, err := strconv.Atoi(c.Callback().Data)
	if err == nil {
		ctx, cancel := b.requestContext()
		defer cancel()
		err = ws.Fleet.SwitchProfile(ctx, idx)
	}
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: msg("unknown_profile")})
	}
	_ = c.Respond()
	return b.sendDraft(c, ws)
}

func (b *Bot) handleNewCar(c tele.Context, ws *service.Workspace) error {
	ws.Fleet.AddNewCar()
	if err := c.Send(msg("new_car")); err != nil {
		return err
	}
	return b.sendDraft(c, ws)
}

func (b *Bot) handleSave(c tele.Context, ws *service.Workspace) error {
	ctx, cancel := b.requestContext()
	defer cancel()
	_, err := ws.Fleet.Submit(ctx)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrBusy):
		return c.Send(msg("saving"))
	case isExpired(err):
		return b.sessionExpired(c)
	default:
		b.Log.Error("failed to save profile", logger.String("client_id", clientID(c)), logger.Error(err))
		return c.Send("⚠️ " + apiclient.Message(err, msg("save_failed")))
	}
	if err := c.Send(msg("saved")); err != nil {
		return err
	}
	return b.sendDraft(c, ws)
}

func (b *Bot) handleSticker(c tele.Context, ws *service.Workspace) error {
	if c.Callback() != nil {
		_ = c.Respond()
	}
	draft := ws.Fleet.Draft()
	if !draft.HasPublicURL() {
		return c.Send(msg("no_sticker"))
	}

	var preview bytes.Buffer
	if err := service.PreviewSticker(&preview, b.Cfg.PublicBaseURL, draft); err != nil {
		b.Log.Error("failed to render sticker preview", logger.String("unique_id", draft.UniqueID), logger.Error(err))
		return c.Send(msg("sticker_failed"))
	}
	var printable bytes.Buffer
	name, err := ws.Sticker(&printable)
	if err != nil {
		b.Log.Error("failed to export sticker", logger.String("unique_id", draft.UniqueID), logger.Error(err))
		return c.Send(msg("sticker_failed"))
	}

	photo := &tele.Photo{File: tele.FromReader(&preview), Caption: b.Svc.PublicURL(draft.UniqueID)}
	if err := c.Send(photo); err != nil {
		return err
	}
	return c.Send(&tele.Document{File: tele.FromReader(&printable), FileName: name, MIME: "image/png"})
}

func (b *Bot) handleEditMenu(c tele.Context, ws *service.Workspace) error {
	_ = c.Respond()
	return c.Send(msg("pick_field"), fieldKeyboard(ws.Fleet.Draft().Type()))
}

func (b *Bot) handleFieldPick(c tele.Context, ws *service.Workspace) error {
	_ = c.Respond()
	spec, ok := service.LookupField(c.Callback().Data)
	if !ok {
		return nil
	}
	prompt := fmt.Sprintf(msg("field_prompt"), spec.Label)
	if spec.Kind != service.FieldText {
		return c.Send(prompt, choiceKeyboard(spec))
	}
	s := b.session(c)
	s.State, s.Field = StateFieldValue, spec.Name
	return c.Send(prompt, cancelMenu())
}

func (b *Bot) handleChoiceValue(c tele.Context, ws *service.Workspace) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Respond()
	}
	return b.applyField(c, ws, args[0], args[1])
}

func (b *Bot) handleFieldValue(c tele.Context, ws *service.Workspace) error {
	s := b.session(c)
	return b.applyField(c, ws, s.Field, c.Text())
}

func (b *Bot) applyField(c tele.Context, ws *service.Workspace, name, value string) error {
	if c.Callback() != nil {
		_ = c.Respond()
	}
	spec, _ := service.LookupField(name)
	if err := ws.Fleet.UpdateField(name, value); err != nil {
		return c.Send("⚠️ " + err.Error())
	}
	s := b.session(c)
	s.State, s.Field = StateIdle, ""

	st := ws.Session.State()
	if err := c.Send(fmt.Sprintf(msg("field_ok"), spec.Label), memberMenu(st.User.IsAdmin())); err != nil {
		return err
	}
	return b.sendDraft(c, ws)
}

func (b *Bot) handlePhotoMenu(c tele.Context, ws *service.Workspace) error {
	_ = c.Respond()
	return c.Send(msg("pick_image"), imageKeyboard())
}

func (b *Bot) handleImagePick(c tele.Context, ws *service.Workspace) error {
	_ = c.Respond()
	field := service.ImageField(c.Callback().Data)
	if !field.Valid() {
		return nil
	}
	s := b.session(c)
	s.State, s.Field = StatePhoto, string(field)
	return c.Send(fmt.Sprintf(msg("image_prompt"), imageLabel(field)), cancelMenu())
}

// handlePhoto attaches a picture sent as a photo or as an image document to the
// image field picked before.
func (b *Bot) handlePhoto(c tele.Context, ws *service.Workspace) error {
	s := b.session(c)
	if s.State != StatePhoto {
		return c.Send(msg("pick_image"), imageKeyboard())
	}

	m := c.Message()
	var (
		file tele.File
		pf   models.PendingFile
	)
	switch {
	case m.Photo != nil:
		file = m.Photo.File
		pf.Name, pf.ContentType = "photo.jpg", "image/jpeg"
	case m.Document != nil && strings.HasPrefix(m.Document.MIME, "image/"):
		if m.Document.FileSize > maxImageBytes {
			return c.Send(msg("too_large"))
		}
		file = m.Document.File
		pf.Name, pf.ContentType = m.Document.FileName, m.Document.MIME
	default:
		return c.Send(msg("not_a_picture"))
	}

	rc, err := b.Bot.File(&file)
	if err != nil {
		b.Log.Error("failed to download picture", logger.Error(err))
		return c.Send(msg("download_failed"))
	}
	defer rc.Close()
	pf.Data, err = readPicture(rc)
	if errors.Is(err, errPictureTooLarge) {
		return c.Send(msg("too_large"))
	}
	if err != nil {
		b.Log.Error("failed to read picture", logger.Error(err))
		return c.Send(msg("download_failed"))
	}

	if err := ws.Fleet.AttachImage(service.ImageField(s.Field), pf); err != nil {
		return c.Send("⚠️ " + err.Error())
	}
	s.State, s.Field = StateIdle, ""
	st := ws.Session.State()
	if err := c.Send(msg("image_ok"), memberMenu(st.User.IsAdmin())); err != nil {
		return err
	}
	return b.sendDraft(c, ws)
}
