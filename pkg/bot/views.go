package bot

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"scanmyride/pkg/models"
	"scanmyride/service"
)

// renderDraft describes the profile being edited. publicURL is empty for a
// profile that has never been saved.
func renderDraft(p models.VehicleProfile, active, total int, publicURL string, pending []service.ImageField) string {
	var sb strings.Builder
	if active == service.NewDraftIndex {
		sb.WriteString("🆕 New profile (not saved yet)\n")
	} else {
		fmt.Fprintf(&sb, "🚗 Profile %d of %d\n", active+1, total)
	}
	fmt.Fprintf(&sb, "Type: %s\n", p.Type())
	if p.IsVerified {
		sb.WriteString("✔️ Verified\n")
	}
	if active != service.NewDraftIndex {
		fmt.Fprintf(&sb, "👀 Scans: %d\n", p.Scans)
	}
	sb.WriteString("\n")

	line := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&sb, "%s: %s\n", label, value)
	}
	line("Name", p.CarName)
	line("Owner", p.OwnerName)
	line("Phone", p.PhoneNumber)
	line("Profession", p.Profession)
	line("City", p.City)
	line("Instagram", p.Instagram)
	line("LinkedIn", p.Linkedin)
	line("Emergency contact", p.EmergencyContact)
	line("Blood group", string(p.BloodGroup))

	if car, ok := p.Car(); ok {
		sb.WriteString("\n⚙️ Specs\n")
		line("Horsepower", car.Specs.HP)
		line("Torque", car.Specs.Torque)
		line("Engine", car.Specs.Engine)
		line("Mods", car.Specs.Mods)
		line("YouTube", car.YoutubeLink)
	} else {
		work, resume := p.Work()
		sb.WriteString("\n💼 Work\n")
		line("Summary", work)
		line("Link", resume)
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Public: %s · Show phone: %s · Emergency mode: %s\n",
		yesNo(p.IsPublic), yesNo(p.ShowPhone), yesNo(p.EmergencyMode))
	fmt.Fprintf(&sb, "Theme: %s %s, %s, %s\n", p.SelectedTheme, p.ThemeColor, p.UIMode, p.FontStyle)

	sb.WriteString("\n🖼 Pictures\n")
	for _, field := range service.ImageFields {
		state := imageState(p, field)
		for _, f := range pending {
			if f == field {
				state = "selected, not uploaded"
			}
		}
		line(imageLabel(field), state)
	}

	sb.WriteString("\n")
	if publicURL != "" {
		fmt.Fprintf(&sb, "🔗 %s", publicURL)
	} else {
		sb.WriteString("🔗 The public link appears after the first save.")
	}
	return sb.String()
}

func imageState(p models.VehicleProfile, field service.ImageField) string {
	var img models.Image
	switch field {
	case service.ImageProfile:
		img = p.ProfileImage
	case service.ImageCar:
		img = p.CarImage
	case service.ImageQrLogo:
		img = p.CustomQrLogo
	}
	if img.IsZero() {
		return ""
	}
	return "uploaded"
}

func imageLabel(field service.ImageField) string {
	switch field {
	case service.ImageProfile:
		return "Profile picture"
	case service.ImageCar:
		return "Car picture"
	default:
		return "QR logo"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// fleetKeyboard holds one button per fetched profile plus the draft actions.
// The sticker button only exists once the draft has a public link.
func fleetKeyboard(profiles []models.VehicleProfile, active int, draft models.VehicleProfile) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	var row []tele.Btn
	for i, p := range profiles {
		label := p.CarName
		if label == "" {
			label = "Profile " + strconv.Itoa(i+1)
		}
		if i == active {
			label = "● " + label
		}
		row = append(row, menu.Data(label, btnSwitch.Unique, strconv.Itoa(i)))
		if len(row) == 2 {
			rows = append(rows, menu.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, menu.Row(row...))
	}
	rows = append(rows, menu.Row(
		menu.Data(msg("btn_edit"), btnEdit.Unique),
		menu.Data(msg("btn_photos"), btnPhotos.Unique),
	))
	if draft.HasPublicURL() {
		rows = append(rows, menu.Row(menu.Data(msg("btn_sticker"), btnSticker.Unique)))
	}
	menu.Inline(rows...)
	return menu
}

func fieldKeyboard(t models.ProfileType) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	var row []tele.Btn
	for _, f := range service.EditableFields {
		if !f.AppliesTo(t) {
			continue
		}
		row = append(row, menu.Data(f.Label, btnField.Unique, f.Name))
		if len(row) == 3 {
			rows = append(rows, menu.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, menu.Row(row...))
	}
	menu.Inline(rows...)
	return menu
}

// choiceKeyboard offers the allowed values of a choice or checkbox field.
func choiceKeyboard(f service.FieldSpec) *tele.ReplyMarkup {
	choices := f.Choices
	if f.Kind == service.FieldBool {
		choices = []string{"true", "false"}
	}
	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	var row []tele.Btn
	for _, v := range choices {
		label := v
		if f.Kind == service.FieldBool {
			label = yesNo(v == "true")
		}
		row = append(row, menu.Data(label, btnValue.Unique, f.Name, v))
		if len(row) == 4 {
			rows = append(rows, menu.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, menu.Row(row...))
	}
	menu.Inline(rows...)
	return menu
}

func imageKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	var row []tele.Btn
	for _, f := range service.ImageFields {
		row = append(row, menu.Data(imageLabel(f), btnImage.Unique, string(f)))
	}
	menu.Inline(menu.Row(row...))
	return menu
}

func renderAdmin(s *models.AdminSummary) string {
	var sb strings.Builder
	sb.WriteString("🛠 ADMIN PANEL\n\n")
	fmt.Fprintf(&sb, "👥 Users: %d\n🚗 Profiles: %d\n👀 Scans: %d\n", s.Count, s.TotalProfiles, s.TotalScans)
	if len(s.Users) == 0 {
		sb.WriteString("\nNo users yet.")
		return sb.String()
	}
	sb.WriteString("\n")
	for _, u := range s.Users {
		joined := "-"
		if !u.Date.IsZero() {
			joined = u.Date.Format("Jan 2, 2006")
		}
		fmt.Fprintf(&sb, "👤 %s <%s>\n   joined %s · active\n", u.Name, u.Email, joined)
	}
	return sb.String()
}
