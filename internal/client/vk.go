// VK identity provider client.
//
// Environment:
//   - VK_CLIENT_ID / VK_CLIENT_SECRET: OAuth application credentials
//   - VK_REDIRECT_URL: must match the callback configured for the app
//
// VK's code exchange is slightly unusual: the token response itself carries
// the numeric user_id (and the email, when the user granted that scope), so
// one extra users.get call is enough for the display name.

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/vk"

	"github.com/xddprog/auth-backend/internal/config"
	"github.com/xddprog/auth-backend/internal/model"
)

const vkAPIVersion = "5.131"

type VKClient struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	apiBaseURL string
}

type vkUsersGetResponse struct {
	Response []struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"response"`
	Error *struct {
		Code    int    `json:"error_code"`
		Message string `json:"error_msg"`
	} `json:"error"`
}

func NewVKClient(cfg config.OAuthConfig) *VKClient {
	return &VKClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"email"},
			Endpoint:     vk.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiBaseURL: "https://api.vk.com",
	}
}

// AuthURL returns the VK authorization page URL for the given CSRF state.
func (c *VKClient) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a normalized profile.
func (c *VKClient) ExchangeCode(ctx context.Context, code string) (*model.ExternalUser, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("vk code exchange failed: %w", err)
	}

	externalID, err := vkUserID(token)
	if err != nil {
		return nil, err
	}

	username, err := c.fetchDisplayName(ctx, token.AccessToken, externalID)
	if err != nil {
		return nil, err
	}

	ext := &model.ExternalUser{
		Provider:   model.ProviderVK,
		ExternalID: externalID,
		Username:   username,
	}
	if email, ok := token.Extra("email").(string); ok && email != "" {
		ext.Email = &email
	}
	return ext, nil
}

func (c *VKClient) fetchDisplayName(ctx context.Context, accessToken, userID string) (string, error) {
	q := url.Values{}
	q.Set("user_ids", userID)
	q.Set("access_token", accessToken)
	q.Set("v", vkAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBaseURL+"/method/users.get?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vk users.get request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vk users.get returned status %d", resp.StatusCode)
	}

	var parsed vkUsersGetResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode vk users.get response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("vk users.get error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Response) == 0 {
		return "", fmt.Errorf("vk users.get returned no users")
	}

	u := parsed.Response[0]
	return strings.TrimSpace(u.FirstName + " " + u.LastName), nil
}

// vkUserID pulls the user_id extra out of the token response. VK serves it
// as a JSON number, so it arrives as float64 or json.Number depending on
// the decoder path.
func vkUserID(token *oauth2.Token) (string, error) {
	switch v := token.Extra("user_id").(type) {
	case float64:
		return fmt.Sprintf("%.0f", v), nil
	case json.Number:
		return v.String(), nil
	case string:
		if v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("vk token response has no user_id")
}
