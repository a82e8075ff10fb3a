package web

import (
	"html/template"
	"net/url"
	"regexp"
	"strings"

	"scanmyride/pkg/models"
)

const (
	fallbackCarImage  = "https://images.unsplash.com/photo-1503376780353-7e6692767b70?auto=format&fit=crop&q=80"
	defaultProfession = "Premium Member"
)

var nonDigits = regexp.MustCompile(`\D`)

type quickAction struct {
	Label  string
	Href   template.URL
	Urgent bool
}

type profilePage struct {
	Title     string
	Accent    string
	Light     bool
	TypeLabel string
	Verified  bool
	Emergency bool
	Scans     int
	UniqueID  string
	PublicURL string

	CarName      string
	OwnerName    string
	Profession   string
	City         string
	BloodGroup   string
	// Only http(s), data and backend-relative values reach these, so they
	// are marked safe for src attributes.
	CarImage     template.URL
	ProfileImage template.URL
	Logo         template.URL

	CallHref  template.URL
	Instagram string
	Linkedin  string

	IsCar       bool
	Specs       []specRow
	YoutubeLink string
	WorkDetails string
	ResumeLink  string

	Actions   []quickAction
	Guestbook []models.GuestbookEntry

	FormName    string
	FormMessage string
	FormError   string
	Signed      bool
}

type specRow struct {
	Label string
	Value string
}

// newProfilePage flattens a fetched profile into what the template shows.
// apiBase resolves stored image paths; publicBase builds the share link.
func newProfilePage(p models.VehicleProfile, apiBase, publicBase string) profilePage {
	accent := p.ThemeColor
	if !models.ValidThemeColor(accent) {
		accent = models.DefaultThemeColor
	}
	page := profilePage{
		Title:        p.CarName,
		Accent:       accent,
		Light:        p.UIMode == models.UIModeLight,
		TypeLabel:    strings.ToUpper(string(p.Type())),
		Verified:     p.IsVerified,
		Emergency:    p.EmergencyMode,
		Scans:        p.Scans,
		UniqueID:     p.UniqueID,
		PublicURL:    models.PublicURL(publicBase, p.UniqueID),
		CarName:      p.CarName,
		OwnerName:    p.OwnerName,
		Profession:   p.Profession,
		City:         p.City,
		BloodGroup:   string(p.BloodGroup),
		CarImage:     template.URL(p.CarImage.Preview(apiBase)),
		ProfileImage: template.URL(p.ProfileImage.Preview(apiBase)),
		Logo:         template.URL(p.CustomQrLogo.Preview(apiBase)),
		Guestbook:    p.Guestbook,
	}
	if page.Title == "" {
		page.Title = "ScanMyRide"
	}
	if page.CarImage == "" {
		page.CarImage = fallbackCarImage
	}
	if page.Profession == "" {
		page.Profession = defaultProfession
	}
	if p.ShowPhone && p.PhoneNumber != "" {
		page.CallHref = template.URL("tel:" + digitsOrPlus(p.PhoneNumber))
	}
	if p.Instagram != "" {
		page.Instagram = "https://instagram.com/" + url.PathEscape(p.Instagram)
	}
	if p.Linkedin != "" {
		page.Linkedin = "https://linkedin.com/in/" + url.PathEscape(p.Linkedin)
	}

	if car, ok := p.Car(); ok {
		page.IsCar = true
		page.YoutubeLink = car.YoutubeLink
		for _, row := range []specRow{
			{"Horsepower", car.Specs.HP},
			{"Torque", car.Specs.Torque},
			{"Engine", car.Specs.Engine},
			{"Mods", car.Specs.Mods},
		} {
			if row.Value != "" {
				page.Specs = append(page.Specs, row)
			}
		}
	} else {
		page.WorkDetails, page.ResumeLink = p.Work()
	}
	page.Actions = quickActions(p)
	return page
}

// quickActions builds the WhatsApp shortcuts. A profile without a phone number
// has none.
func quickActions(p models.VehicleProfile) []quickAction {
	digits := nonDigits.ReplaceAllString(p.PhoneNumber, "")
	if digits == "" {
		return nil
	}
	wa := func(text string) template.URL {
		return template.URL("https://wa.me/" + digits + "?text=" + url.QueryEscape(text))
	}
	actions := []quickAction{
		{Label: "Send Message", Href: wa("Hi " + p.OwnerName + ", I scanned your " + string(p.Type()) + ".")},
	}
	if p.Type() == models.ProfileCar {
		actions = append(actions, quickAction{
			Label:  "Emergency Alert",
			Href:   wa("Urgent: Please contact regarding your car " + p.CarName + " (Auto-Alert)"),
			Urgent: true,
		})
	} else {
		actions = append(actions, quickAction{Label: "Call Now", Href: template.URL("tel:" + digitsOrPlus(p.PhoneNumber))})
	}
	actions = append(actions, quickAction{Label: "General Contact", Href: wa("Hi, I scanned your car.")})
	return actions
}

// digitsOrPlus keeps what a tel: link may carry.
func digitsOrPlus(phone string) string {
	return strings.Map(func(r rune) rune {
		if r == '+' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, phone)
}
