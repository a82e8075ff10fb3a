package bot

import (
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v3"

	"scanmyride/pkg/models"
	"scanmyride/service"
)

func TestRenderDraftNewProfile(t *testing.T) {
	text := renderDraft(models.NewBlankProfile(), service.NewDraftIndex, 0, "", []service.ImageField{service.ImageCar})
	for _, want := range []string{"New profile", "Horsepower", "The public link appears after the first save", "selected, not uploaded"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}
}

func TestRenderDraftSavedBusiness(t *testing.T) {
	p := models.NewBlankProfile()
	p.UniqueID = "b1"
	p.CarName = "Shine Studio"
	p.IsVerified = true
	p.Scans = 7
	p.Details = models.BusinessDetails{WorkDetails: "Detailing"}
	p.ProfileImage = models.ParseImage("uploads/me.png")

	text := renderDraft(p, 1, 3, "https://scanmyride.test/p/b1", nil)
	for _, want := range []string{"Profile 2 of 3", "Verified", "Scans: 7", "Summary: Detailing", "https://scanmyride.test/p/b1", "Profile picture: uploaded"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Horsepower") {
		t.Error("business profiles show no specs")
	}
}

func TestFieldKeyboardFollowsProfileType(t *testing.T) {
	labels := func(t models.ProfileType) string {
		var sb strings.Builder
		for _, row := range fieldKeyboard(t).InlineKeyboard {
			for _, b := range row {
				sb.WriteString(b.Text + "|")
			}
		}
		return sb.String()
	}
	if car := labels(models.ProfileCar); !strings.Contains(car, "Horsepower") || strings.Contains(car, "Summary") {
		t.Fatalf("unexpected car fields %s", car)
	}
	if biz := labels(models.ProfileBusiness); strings.Contains(biz, "Horsepower") || !strings.Contains(biz, "Summary") {
		t.Fatalf("unexpected business fields %s", biz)
	}
}

func TestRenderAdmin(t *testing.T) {
	text := renderAdmin(&models.AdminSummary{
		Count: 1, TotalProfiles: 2, TotalScans: 30,
		Users: []models.User{{Name: "Ana", Email: "ana@example.com", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}},
	})
	for _, want := range []string{"Users: 1", "Profiles: 2", "Scans: 30", "Ana <ana@example.com>", "Mar 5, 2024", "active"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}
	if !strings.Contains(renderAdmin(&models.AdminSummary{}), "No users yet") {
		t.Error("expected the empty state")
	}
}

func hasButton(menu *tele.ReplyMarkup, text string) bool {
	for _, row := range menu.InlineKeyboard {
		for _, b := range row {
			if b.Text == text {
				return true
			}
		}
	}
	return false
}

func TestStickerButtonNeedsPublicLink(t *testing.T) {
	draft := models.NewBlankProfile()
	if hasButton(fleetKeyboard(nil, service.NewDraftIndex, draft), msg("btn_sticker")) {
		t.Fatal("a never-saved draft must not offer the sticker")
	}

	draft.ID, draft.UniqueID, draft.CarName = "p1", "u1", "Supra"
	if !hasButton(fleetKeyboard([]models.VehicleProfile{draft}, 0, draft), msg("btn_sticker")) {
		t.Fatal("expected the sticker button once the profile is saved")
	}
}

func TestMemberMenuHasNoStaticStickerButton(t *testing.T) {
	for _, row := range memberMenu(true).ReplyKeyboard {
		for _, b := range row {
			if b.Text == msg("btn_sticker") {
				t.Fatal("the reply keyboard must not carry the sticker button")
			}
		}
	}
}
