package apiclient

import (
	"context"
	"net/url"

	"scanmyride/pkg/models"
)

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var res models.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.Post(ctx, "/api/auth/login", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	var res models.AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.Post(ctx, "/api/auth/register", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Get(ctx, "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) MyProfiles(ctx context.Context) ([]models.VehicleProfile, error) {
	var profiles []models.VehicleProfile
	if err := c.Get(ctx, "/api/profile/me", &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (c *Client) SaveProfile(ctx context.Context, form *Form) (*models.VehicleProfile, error) {
	var profile models.VehicleProfile
	if err := c.PostMultipart(ctx, "/api/profile", form, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) PublicProfile(ctx context.Context, uniqueID string) (*models.VehicleProfile, error) {
	var profile models.VehicleProfile
	if err := c.Get(ctx, "/api/profile/public/"+url.PathEscape(uniqueID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) SignGuestbook(ctx context.Context, uniqueID, name, message string) error {
	body := map[string]string{"name": name, "message": message}
	return c.Post(ctx, "/api/profile/public/"+url.PathEscape(uniqueID)+"/guestbook", body, nil)
}

func (c *Client) AdminUsers(ctx context.Context) (*models.AdminSummary, error) {
	var summary models.AdminSummary
	if err := c.Get(ctx, "/api/admin/users", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
