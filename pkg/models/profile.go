package models

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

type ProfileType string

const (
	ProfileCar       ProfileType = "car"
	ProfileBusiness  ProfileType = "business"
	ProfilePortfolio ProfileType = "portfolio"
)

func (t ProfileType) Valid() bool {
	switch t {
	case ProfileCar, ProfileBusiness, ProfilePortfolio:
		return true
	}
	return false
}

type BloodGroup string

var BloodGroups = []BloodGroup{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

// Valid reports whether g is a known group. Empty means "not set" and is valid.
func (g BloodGroup) Valid() bool {
	if g == "" {
		return true
	}
	for _, known := range BloodGroups {
		if g == known {
			return true
		}
	}
	return false
}

type Theme string

const (
	ThemeCarbon  Theme = "carbon"
	ThemeNeon    Theme = "neon"
	ThemeCyber   Theme = "cyber"
	ThemeMinimal Theme = "minimal"
	ThemeSpec    Theme = "spec"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeCarbon, ThemeNeon, ThemeCyber, ThemeMinimal, ThemeSpec:
		return true
	}
	return false
}

type UIMode string

const (
	UIModeDark  UIMode = "dark"
	UIModeLight UIMode = "light"
)

func (m UIMode) Valid() bool {
	return m == UIModeDark || m == UIModeLight
}

const (
	DefaultThemeColor = "#f4b00b"
	DefaultFontStyle  = "font-outfit"
	AnonymousSigner   = "Anonymous Enthusiast"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func ValidThemeColor(s string) bool {
	return hexColorRegex.MatchString(s)
}

type Specs struct {
	HP     string `json:"hp"`
	Torque string `json:"torque"`
	Engine string `json:"engine"`
	Mods   string `json:"mods"`
}

// UnmarshalJSON accepts the object form as well as the JSON-string form the
// multipart upload stores it in. Numeric values are kept as text.
func (s *Specs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Specs{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		if strings.TrimSpace(inner) == "" {
			*s = Specs{}
			return nil
		}
		data = []byte(inner)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Specs{
		HP:     cast.ToString(raw["hp"]),
		Torque: cast.ToString(raw["torque"]),
		Engine: cast.ToString(raw["engine"]),
		Mods:   cast.ToString(raw["mods"]),
	}
	return nil
}

// Details holds the fields that only make sense for one profile type.
type Details interface {
	ProfileType() ProfileType
}

type CarDetails struct {
	Specs       Specs
	YoutubeLink string
}

func (CarDetails) ProfileType() ProfileType { return ProfileCar }

type BusinessDetails struct {
	WorkDetails string
	ResumeLink  string
}

func (BusinessDetails) ProfileType() ProfileType { return ProfileBusiness }

type PortfolioDetails struct {
	WorkDetails string
	ResumeLink  string
}

func (PortfolioDetails) ProfileType() ProfileType { return ProfilePortfolio }

// DetailsFor returns the empty variant for t, carrying the work fields over
// from prev when both are non-car variants.
func DetailsFor(t ProfileType, prev Details) Details {
	work, resume := "", ""
	switch p := prev.(type) {
	case BusinessDetails:
		work, resume = p.WorkDetails, p.ResumeLink
	case PortfolioDetails:
		work, resume = p.WorkDetails, p.ResumeLink
	}
	switch t {
	case ProfileBusiness:
		return BusinessDetails{WorkDetails: work, ResumeLink: resume}
	case ProfilePortfolio:
		return PortfolioDetails{WorkDetails: work, ResumeLink: resume}
	}
	if c, ok := prev.(CarDetails); ok {
		return c
	}
	return CarDetails{}
}

type GuestbookEntry struct {
	Name    string    `json:"name"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

type VehicleProfile struct {
	ID       ID
	UniqueID string

	CarName          string
	OwnerName        string
	PhoneNumber      string
	Profession       string
	Instagram        string
	Linkedin         string
	EmergencyContact string
	BloodGroup       BloodGroup
	City             string

	IsPublic      bool
	ShowPhone     bool
	EmergencyMode bool

	ThemeColor    string
	SelectedTheme Theme
	UIMode        UIMode
	FontStyle     string

	Details Details

	ProfileImage Image
	CarImage     Image
	CustomQrLogo Image

	Guestbook []GuestbookEntry

	// Computed by the backend, never sent back.
	IsVerified bool
	Scans      int
}

// NewBlankProfile is the template used for a vehicle that has never been saved.
func NewBlankProfile() VehicleProfile {
	return VehicleProfile{
		IsPublic:      true,
		ShowPhone:     true,
		ThemeColor:    DefaultThemeColor,
		SelectedTheme: ThemeCarbon,
		UIMode:        UIModeDark,
		FontStyle:     DefaultFontStyle,
		Details:       CarDetails{},
	}
}

func (p VehicleProfile) Type() ProfileType {
	if p.Details == nil {
		return ProfileCar
	}
	return p.Details.ProfileType()
}

func (p VehicleProfile) Car() (CarDetails, bool) {
	c, ok := p.Details.(CarDetails)
	return c, ok || p.Details == nil
}

// Work returns the work summary and resume link of non-car profiles.
func (p VehicleProfile) Work() (workDetails, resumeLink string) {
	switch d := p.Details.(type) {
	case BusinessDetails:
		return d.WorkDetails, d.ResumeLink
	case PortfolioDetails:
		return d.WorkDetails, d.ResumeLink
	}
	return "", ""
}

func (p VehicleProfile) HasPublicURL() bool {
	return p.UniqueID != ""
}

// Clone returns a copy that shares no mutable state with p.
func (p VehicleProfile) Clone() VehicleProfile {
	c := p
	if p.Guestbook != nil {
		c.Guestbook = append([]GuestbookEntry(nil), p.Guestbook...)
	}
	return c
}

// PublicURL is the shareable deep link of a saved profile.
func PublicURL(base, uniqueID string) string {
	return strings.TrimRight(base, "/") + "/p/" + url.PathEscape(uniqueID)
}

type profileWire struct {
	ID               ID               `json:"_id,omitempty"`
	UniqueID         string           `json:"uniqueId,omitempty"`
	CarName          string           `json:"carName"`
	OwnerName        string           `json:"ownerName"`
	PhoneNumber      string           `json:"phoneNumber"`
	Profession       string           `json:"profession"`
	Instagram        string           `json:"instagram"`
	Linkedin         string           `json:"linkedin"`
	EmergencyContact string           `json:"emergencyContact"`
	BloodGroup       BloodGroup       `json:"bloodGroup"`
	City             string           `json:"city"`
	IsPublic         bool             `json:"isPublic"`
	ShowPhone        bool             `json:"showPhone"`
	EmergencyMode    bool             `json:"emergencyMode"`
	ThemeColor       string           `json:"themeColor,omitempty"`
	SelectedTheme    Theme            `json:"selectedTheme,omitempty"`
	UIMode           UIMode           `json:"uiMode,omitempty"`
	FontStyle        string           `json:"fontStyle,omitempty"`
	ProfileType      ProfileType      `json:"profileType,omitempty"`
	Specs            *Specs           `json:"specs,omitempty"`
	YoutubeLink      string           `json:"youtubeLink,omitempty"`
	WorkDetails      string           `json:"workDetails,omitempty"`
	ResumeLink       string           `json:"resumeLink,omitempty"`
	ProfileImage     Image            `json:"profileImage"`
	CarImage         Image            `json:"carImage"`
	CustomQrLogo     Image            `json:"customQrLogo"`
	Guestbook        []GuestbookEntry `json:"guestbook,omitempty"`
	IsVerified       bool             `json:"isVerified,omitempty"`
	Scans            int              `json:"scans,omitempty"`
}

func (p VehicleProfile) MarshalJSON() ([]byte, error) {
	w := profileWire{
		ID:               p.ID,
		UniqueID:         p.UniqueID,
		CarName:          p.CarName,
		OwnerName:        p.OwnerName,
		PhoneNumber:      p.PhoneNumber,
		Profession:       p.Profession,
		Instagram:        p.Instagram,
		Linkedin:         p.Linkedin,
		EmergencyContact: p.EmergencyContact,
		BloodGroup:       p.BloodGroup,
		City:             p.City,
		IsPublic:         p.IsPublic,
		ShowPhone:        p.ShowPhone,
		EmergencyMode:    p.EmergencyMode,
		ThemeColor:       p.ThemeColor,
		SelectedTheme:    p.SelectedTheme,
		UIMode:           p.UIMode,
		FontStyle:        p.FontStyle,
		ProfileType:      p.Type(),
		ProfileImage:     p.ProfileImage,
		CarImage:         p.CarImage,
		CustomQrLogo:     p.CustomQrLogo,
		Guestbook:        p.Guestbook,
		IsVerified:       p.IsVerified,
		Scans:            p.Scans,
	}
	switch d := p.Details.(type) {
	case CarDetails:
		specs := d.Specs
		w.Specs = &specs
		w.YoutubeLink = d.YoutubeLink
	case BusinessDetails:
		w.WorkDetails, w.ResumeLink = d.WorkDetails, d.ResumeLink
	case PortfolioDetails:
		w.WorkDetails, w.ResumeLink = d.WorkDetails, d.ResumeLink
	}
	return json.Marshal(w)
}

func (p *VehicleProfile) UnmarshalJSON(data []byte) error {
	var w profileWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = VehicleProfile{
		ID:               w.ID,
		UniqueID:         w.UniqueID,
		CarName:          w.CarName,
		OwnerName:        w.OwnerName,
		PhoneNumber:      w.PhoneNumber,
		Profession:       w.Profession,
		Instagram:        w.Instagram,
		Linkedin:         w.Linkedin,
		EmergencyContact: w.EmergencyContact,
		BloodGroup:       w.BloodGroup,
		City:             w.City,
		IsPublic:         w.IsPublic,
		ShowPhone:        w.ShowPhone,
		EmergencyMode:    w.EmergencyMode,
		ThemeColor:       w.ThemeColor,
		SelectedTheme:    w.SelectedTheme,
		UIMode:           w.UIMode,
		FontStyle:        w.FontStyle,
		ProfileImage:     w.ProfileImage,
		CarImage:         w.CarImage,
		CustomQrLogo:     w.CustomQrLogo,
		Guestbook:        w.Guestbook,
		IsVerified:       w.IsVerified,
		Scans:            w.Scans,
	}
	switch w.ProfileType {
	case ProfileBusiness:
		p.Details = BusinessDetails{WorkDetails: w.WorkDetails, ResumeLink: w.ResumeLink}
	case ProfilePortfolio:
		p.Details = PortfolioDetails{WorkDetails: w.WorkDetails, ResumeLink: w.ResumeLink}
	default:
		car := CarDetails{YoutubeLink: w.YoutubeLink}
		if w.Specs != nil {
			car.Specs = *w.Specs
		}
		p.Details = car
	}
	return nil
}
