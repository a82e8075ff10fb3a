package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"

	"scanmyride/config"
	"scanmyride/pkg/logger"
	"scanmyride/service"
)

// ChatSession is the conversation state of one chat. Everything that must
// survive a restart lives in the workspace store instead.
type ChatSession struct {
	State string
	Email string
	Name  string
	// Field is the profile field (or image field) being edited.
	Field string
	// Next is the route to resume once the user has logged in.
	Next string
}

type Bot struct {
	Bot *tele.Bot
	Log logger.ILogger
	Cfg config.Config
	Svc service.IServiceManager

	mu       sync.Mutex
	Sessions map[int64]*ChatSession
}

const (
	StateIdle             = "idle"
	StateLoginEmail       = "awaiting_login_email"
	StateLoginPassword    = "awaiting_login_password"
	StateRegisterName     = "awaiting_register_name"
	StateRegisterEmail    = "awaiting_register_email"
	StateRegisterPassword = "awaiting_register_password"
	StateFieldValue       = "awaiting_field_value"
	StatePhoto            = "awaiting_photo"
)

// settleWait bounds how long a handler waits for the session bootstrap before
// showing the placeholder.
const settleWait = 8 * time.Second

func New(cfg config.Config, svc service.IServiceManager, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			fields := []logger.Field{logger.Error(err)}
			if c != nil && c.Chat() != nil {
				fields = append(fields, logger.Int64("chat_id", c.Chat().ID))
			}
			log.Error("bot handler failed", fields...)
		},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}
	bot := &Bot{
		Bot:      b,
		Log:      log,
		Cfg:      cfg,
		Svc:      svc,
		Sessions: make(map[int64]*ChatSession),
	}
	bot.registerHandlers()
	return bot, nil
}

func (b *Bot) Start() {
	b.Log.Info("🤖 owner console started")
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Bot.Stop()
}

var messages = map[string]map[string]string{
	"en": {
		"welcome":          "👋 Welcome to ScanMyRide!\nCreate a digital profile for your ride and print a QR sticker for it.",
		"checking":         "⏳ Checking your session, try again in a moment.",
		"login_required":   "🔐 Please log in first.",
		"login_email":      "📧 Your email:",
		"login_password":   "🔑 Your password:",
		"login_ok":         "✅ Logged in as %s.",
		"login_failed":     "Login failed",
		"register_name":    "👤 Your name:",
		"register_email":   "📧 Your email:",
		"register_pass":    "🔑 Choose a password:",
		"register_ok":      "🎉 Account created. Welcome, %s!",
		"register_failed":  "Registration failed",
		"logged_out":       "👋 Logged out.",
		"expired":          "⌛ Your session has expired. Please log in again.",
		"not_admin":        "🚫 The admin panel is for administrators only.",
		"load_failed":      "Failed to load your fleet",
		"save_failed":      "Failed to save profile",
		"saving":           "⏳ Already saving, please wait.",
		"saved":            "✅ Profile saved.",
		"new_car":          "🆕 New profile started. Fill in the fields and press Save.",
		"pick_field":       "✏️ Which field?",
		"field_prompt":     "Send the new value for %s:",
		"field_ok":         "✅ %s updated.",
		"pick_image":       "🖼 Which picture?",
		"image_prompt":     "📷 Send the picture for %s.",
		"image_ok":         "✅ Picture selected. It is uploaded when you press Save.",
		"no_sticker":       "🏷 Save this profile first. The sticker appears once it has a public link.",
		"sticker_failed":   "⚠️ Failed to render the sticker, please try again.",
		"unknown_profile":  "That profile is no longer in your fleet.",
		"download_failed":  "⚠️ Could not download that picture.",
		"too_large":        "⚠️ That picture is larger than 10 MB. Please send a smaller one.",
		"not_a_picture":    "Please send a picture.",
		"btn_login":        "🔐 Login",
		"btn_register":     "📝 Register",
		"btn_dashboard":    "🚗 My fleet",
		"btn_new":          "➕ Add new car",
		"btn_save":         "💾 Save",
		"btn_sticker":      "🏷 QR sticker",
		"btn_admin":        "🛠 Admin panel",
		"btn_logout":       "🚪 Logout",
		"btn_edit":         "✏️ Edit field",
		"btn_photos":       "🖼 Pictures",
		"btn_cancel":       "↩️ Cancel",
		"cancelled":        "Cancelled.",
	},
}

func msg(key string) string {
	return messages["en"][key]
}

// Inline endpoints. The payload travels in the callback data.
var (
	btnSwitch  = &tele.Btn{Unique: "switch"}
	btnEdit    = &tele.Btn{Unique: "edit"}
	btnField   = &tele.Btn{Unique: "field"}
	btnPhotos  = &tele.Btn{Unique: "photos"}
	btnImage   = &tele.Btn{Unique: "image"}
	btnValue   = &tele.Btn{Unique: "value"}
	btnSticker = &tele.Btn{Unique: "sticker"}
)

func (b *Bot) registerHandlers() {
	b.Bot.Use(middleware.Recover(func(err error) {
		b.Log.Error("recovered from bot panic", logger.Error(err))
	}))

	b.Bot.Handle("/start", b.handleStart)
	b.Bot.Handle("/login", b.handleLoginStart)
	b.Bot.Handle("/register", b.handleRegisterStart)
	b.Bot.Handle("/logout", b.handleLogout)
	b.Bot.Handle("/dashboard", b.member(service.RouteDashboard, b.handleDashboard))
	b.Bot.Handle("/new", b.member(service.RouteDashboard, b.handleNewCar))
	b.Bot.Handle("/save", b.member(service.RouteDashboard, b.handleSave))
	b.Bot.Handle("/sticker", b.member(service.RouteDashboard, b.handleSticker))
	b.Bot.Handle("/admin", b.admin(service.RouteAdmin, b.handleAdmin))
	b.Bot.Handle("/cancel", b.handleCancel)

	b.Bot.Handle(msg("btn_login"), b.handleLoginStart)
	b.Bot.Handle(msg("btn_register"), b.handleRegisterStart)
	b.Bot.Handle(msg("btn_logout"), b.handleLogout)
	b.Bot.Handle(msg("btn_dashboard"), b.member(service.RouteDashboard, b.handleDashboard))
	b.Bot.Handle(msg("btn_new"), b.member(service.RouteDashboard, b.handleNewCar))
	b.Bot.Handle(msg("btn_save"), b.member(service.RouteDashboard, b.handleSave))
	b.Bot.Handle(msg("btn_admin"), b.admin(service.RouteAdmin, b.handleAdmin))
	b.Bot.Handle(msg("btn_cancel"), b.handleCancel)

	b.Bot.Handle(btnSwitch, b.member(service.RouteDashboard, b.handleSwitch))
	b.Bot.Handle(btnEdit, b.member(service.RouteDashboard, b.handleEditMenu))
	b.Bot.Handle(btnField, b.member(service.RouteDashboard, b.handleFieldPick))
	b.Bot.Handle(btnValue, b.member(service.RouteDashboard, b.handleChoiceValue))
	b.Bot.Handle(btnPhotos, b.member(service.RouteDashboard, b.handlePhotoMenu))
	b.Bot.Handle(btnImage, b.member(service.RouteDashboard, b.handleImagePick))
	b.Bot.Handle(btnSticker, b.member(service.RouteDashboard, b.handleSticker))

	b.Bot.Handle(tele.OnPhoto, b.member(service.RouteDashboard, b.handlePhoto))
	b.Bot.Handle(tele.OnDocument, b.member(service.RouteDashboard, b.handlePhoto))
	b.Bot.Handle(tele.OnText, b.handleText)
}

func clientID(c tele.Context) string {
	return "tg:" + strconv.FormatInt(c.Chat().ID, 10)
}

func (b *Bot) session(c tele.Context) *ChatSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.Sessions[c.Chat().ID]
	if !ok {
		s = &ChatSession{State: StateIdle}
		b.Sessions[c.Chat().ID] = s
	}
	return s
}

func (b *Bot) resetSession(c tele.Context) {
	b.mu.Lock()
	b.Sessions[c.Chat().ID] = &ChatSession{State: StateIdle}
	b.mu.Unlock()
}

func (b *Bot) workspace(c tele.Context) *service.Workspace {
	return b.Svc.Open(context.Background(), clientID(c))
}

// requestContext bounds one handler's calls to the backend.
func (b *Bot) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*b.Cfg.APITimeout+time.Second)
}

func (b *Bot) handleStart(c tele.Context) error {
	ws := b.workspace(c)
	if !waitSettled(ws) {
		return c.Send(msg("checking"))
	}
	st := ws.Session.State()
	if !st.Authenticated() {
		return c.Send(msg("welcome"), guestMenu())
	}
	return b.showMenu(c, st)
}

func (b *Bot) showMenu(c tele.Context, st service.SessionState) error {
	name := ""
	if st.User != nil {
		name = st.User.Name
	}
	return c.Send(fmt.Sprintf("🏁 Hi %s! What would you like to do?", name), memberMenu(st.User.IsAdmin()))
}

func (b *Bot) handleCancel(c tele.Context) error {
	s := b.session(c)
	s.State, s.Field = StateIdle, ""
	ws := b.workspace(c)
	if st := ws.Session.State(); st.Authenticated() {
		return c.Send(msg("cancelled"), memberMenu(st.User.IsAdmin()))
	}
	return c.Send(msg("cancelled"), guestMenu())
}

func guestMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(menu.Row(menu.Text(msg("btn_login")), menu.Text(msg("btn_register"))))
	return menu
}

func memberMenu(admin bool) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	rows := []tele.Row{
		menu.Row(menu.Text(msg("btn_dashboard")), menu.Text(msg("btn_new"))),
		menu.Row(menu.Text(msg("btn_save"))),
	}
	if admin {
		rows = append(rows, menu.Row(menu.Text(msg("btn_admin"))))
	}
	rows = append(rows, menu.Row(menu.Text(msg("btn_logout"))))
	menu.Reply(rows...)
	return menu
}

func (b *Bot) handleText(c tele.Context) error {
	s := b.session(c)
	switch s.State {
	case StateLoginEmail, StateLoginPassword, StateRegisterName, StateRegisterEmail, StateRegisterPassword:
		return b.handleAuthText(c, s)
	case StateFieldValue:
		return b.member(service.RouteDashboard, b.handleFieldValue)(c)
	case StatePhoto:
		return c.Send(msg("not_a_picture"))
	}
	return nil
}
