package service

import (
	"encoding/json"
	"strconv"

	"scanmyride/pkg/apiclient"
	"scanmyride/pkg/models"
)

type ImageField string

const (
	ImageProfile ImageField = "profileImage"
	ImageCar     ImageField = "carImage"
	ImageQrLogo  ImageField = "customQrLogo"
)

var ImageFields = []ImageField{ImageProfile, ImageCar, ImageQrLogo}

func (f ImageField) Valid() bool {
	for _, known := range ImageFields {
		if f == known {
			return true
		}
	}
	return false
}

func imageOf(p models.VehicleProfile, f ImageField) models.Image {
	switch f {
	case ImageProfile:
		return p.ProfileImage
	case ImageCar:
		return p.CarImage
	case ImageQrLogo:
		return p.CustomQrLogo
	}
	return models.Image{}
}

// BuildProfileForm turns a draft into the multipart upload. Backend identity,
// image fields and server-computed fields are not sent as scalars; an "id"
// field is present only when updating an existing profile.
func BuildProfileForm(p models.VehicleProfile, pending map[ImageField]models.PendingFile) (*apiclient.Form, error) {
	form := &apiclient.Form{}
	form.Add("carName", p.CarName)
	form.Add("ownerName", p.OwnerName)
	form.Add("phoneNumber", p.PhoneNumber)
	form.Add("profession", p.Profession)
	form.Add("instagram", p.Instagram)
	form.Add("linkedin", p.Linkedin)
	form.Add("emergencyContact", p.EmergencyContact)
	form.Add("bloodGroup", string(p.BloodGroup))
	form.Add("city", p.City)
	form.Add("isPublic", strconv.FormatBool(p.IsPublic))
	form.Add("showPhone", strconv.FormatBool(p.ShowPhone))
	form.Add("emergencyMode", strconv.FormatBool(p.EmergencyMode))
	form.Add("themeColor", p.ThemeColor)
	form.Add("selectedTheme", string(p.SelectedTheme))
	form.Add("uiMode", string(p.UIMode))
	form.Add("fontStyle", p.FontStyle)
	form.Add("profileType", string(p.Type()))
	if p.UniqueID != "" {
		form.Add("uniqueId", p.UniqueID)
	}

	switch d := p.Details.(type) {
	case models.BusinessDetails:
		form.Add("workDetails", d.WorkDetails)
		form.Add("resumeLink", d.ResumeLink)
	case models.PortfolioDetails:
		form.Add("workDetails", d.WorkDetails)
		form.Add("resumeLink", d.ResumeLink)
	default:
		car, _ := p.Car()
		specs, err := json.Marshal(car.Specs)
		if err != nil {
			return nil, err
		}
		form.Add("specs", string(specs))
		form.Add("youtubeLink", car.YoutubeLink)
	}

	if p.ID != "" {
		form.Add("id", string(p.ID))
	}

	for _, field := range ImageFields {
		f, ok := pending[field]
		if !ok {
			continue
		}
		form.AddFile(string(field), f.Name, f.ContentType, f.Data)
	}
	return form, nil
}
