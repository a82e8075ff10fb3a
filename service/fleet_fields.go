package service

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"scanmyride/pkg/models"
)

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldBool
	FieldChoice
)

type FieldSpec struct {
	Name    string
	Label   string
	Kind    FieldKind
	Choices []string
	// Only offered for these profile types; empty means all.
	Types []models.ProfileType
}

func (f FieldSpec) AppliesTo(t models.ProfileType) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, ft := range f.Types {
		if ft == t {
			return true
		}
	}
	return false
}

var nonCar = []models.ProfileType{models.ProfileBusiness, models.ProfilePortfolio}
var carOnly = []models.ProfileType{models.ProfileCar}

// EditableFields lists every draft field UpdateField accepts, in form order.
var EditableFields = []FieldSpec{
	{Name: "profileType", Label: "Profile type", Kind: FieldChoice, Choices: []string{"car", "business", "portfolio"}},
	{Name: "carName", Label: "Car / brand name"},
	{Name: "ownerName", Label: "Owner name"},
	{Name: "phoneNumber", Label: "Phone"},
	{Name: "profession", Label: "Profession"},
	{Name: "city", Label: "City"},
	{Name: "instagram", Label: "Instagram"},
	{Name: "linkedin", Label: "LinkedIn"},
	{Name: "emergencyContact", Label: "Emergency contact"},
	{Name: "bloodGroup", Label: "Blood group", Kind: FieldChoice, Choices: bloodGroupChoices()},
	{Name: "isPublic", Label: "Public profile", Kind: FieldBool},
	{Name: "showPhone", Label: "Show phone", Kind: FieldBool},
	{Name: "emergencyMode", Label: "Emergency mode", Kind: FieldBool},
	{Name: "themeColor", Label: "Theme colour"},
	{Name: "selectedTheme", Label: "Theme", Kind: FieldChoice, Choices: []string{"carbon", "neon", "cyber", "minimal", "spec"}},
	{Name: "uiMode", Label: "UI mode", Kind: FieldChoice, Choices: []string{"dark", "light"}},
	{Name: "fontStyle", Label: "Font"},
	{Name: "specs.hp", Label: "Horsepower", Types: carOnly},
	{Name: "specs.torque", Label: "Torque", Types: carOnly},
	{Name: "specs.engine", Label: "Engine", Types: carOnly},
	{Name: "specs.mods", Label: "Mods", Types: carOnly},
	{Name: "youtubeLink", Label: "YouTube build link", Types: carOnly},
	{Name: "workDetails", Label: "Summary", Types: nonCar},
	{Name: "resumeLink", Label: "Portfolio / resume link", Types: nonCar},
}

func LookupField(name string) (FieldSpec, bool) {
	for _, f := range EditableFields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func bloodGroupChoices() []string {
	out := make([]string, 0, len(models.BloodGroups))
	for _, g := range models.BloodGroups {
		out = append(out, string(g))
	}
	return out
}

func invalid(name, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidField, name, value)
}

// setField applies one form change to p.
func setField(p *models.VehicleProfile, name, value string) error {
	switch name {
	case "carName":
		p.CarName = value
	case "ownerName":
		p.OwnerName = value
	case "phoneNumber":
		p.PhoneNumber = value
	case "profession":
		p.Profession = value
	case "instagram":
		p.Instagram = strings.TrimPrefix(strings.TrimSpace(value), "@")
	case "linkedin":
		p.Linkedin = value
	case "emergencyContact":
		p.EmergencyContact = value
	case "city":
		p.City = value
	case "bloodGroup":
		g := models.BloodGroup(strings.ToUpper(strings.TrimSpace(value)))
		if !g.Valid() {
			return invalid(name, value)
		}
		p.BloodGroup = g
	case "isPublic", "showPhone", "emergencyMode":
		b, err := cast.ToBoolE(strings.TrimSpace(value))
		if err != nil {
			return invalid(name, value)
		}
		switch name {
		case "isPublic":
			p.IsPublic = b
		case "showPhone":
			p.ShowPhone = b
		default:
			p.EmergencyMode = b
		}
	case "themeColor":
		if !models.ValidThemeColor(value) {
			return invalid(name, value)
		}
		p.ThemeColor = value
	case "selectedTheme":
		t := models.Theme(value)
		if !t.Valid() {
			return invalid(name, value)
		}
		p.SelectedTheme = t
	case "uiMode":
		m := models.UIMode(value)
		if !m.Valid() {
			return invalid(name, value)
		}
		p.UIMode = m
	case "fontStyle":
		if strings.TrimSpace(value) == "" {
			return invalid(name, value)
		}
		p.FontStyle = value
	case "profileType":
		t := models.ProfileType(value)
		if !t.Valid() {
			return invalid(name, value)
		}
		p.Details = models.DetailsFor(t, p.Details)
	case "specs.hp", "specs.torque", "specs.engine", "specs.mods", "youtubeLink":
		car, ok := p.Details.(models.CarDetails)
		if !ok && p.Details != nil {
			return fmt.Errorf("%w: %s only applies to car profiles", ErrInvalidField, name)
		}
		switch name {
		case "specs.hp":
			car.Specs.HP = value
		case "specs.torque":
			car.Specs.Torque = value
		case "specs.engine":
			car.Specs.Engine = value
		case "specs.mods":
			car.Specs.Mods = value
		default:
			car.YoutubeLink = value
		}
		p.Details = car
	case "workDetails", "resumeLink":
		switch d := p.Details.(type) {
		case models.BusinessDetails:
			if name == "workDetails" {
				d.WorkDetails = value
			} else {
				d.ResumeLink = value
			}
			p.Details = d
		case models.PortfolioDetails:
			if name == "workDetails" {
				d.WorkDetails = value
			} else {
				d.ResumeLink = value
			}
			p.Details = d
		default:
			return fmt.Errorf("%w: %s only applies to business and portfolio profiles", ErrInvalidField, name)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}
