// Yandex identity provider client.
//
// Environment:
//   - YANDEX_CLIENT_ID / YANDEX_CLIENT_SECRET: OAuth application credentials
//   - YANDEX_REDIRECT_URL
//
// The frontend completes the OAuth flow itself and posts the resulting
// access token; this client only introspects it against login.yandex.ru.

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/yandex"

	"github.com/xddprog/auth-backend/internal/config"
	"github.com/xddprog/auth-backend/internal/model"
)

type YandexClient struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	infoURL    string
}

type yandexUserInfo struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	DefaultEmail string `json:"default_email"`
}

func NewYandexClient(cfg config.OAuthConfig) *YandexClient {
	return &YandexClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     yandex.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		infoURL:    "https://login.yandex.ru/info",
	}
}

// AuthURL returns the Yandex authorization page URL for the given CSRF state.
func (c *YandexClient) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// GetUser resolves an OAuth access token to a normalized profile.
func (c *YandexClient) GetUser(ctx context.Context, accessToken string) (*model.ExternalUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.infoURL+"?format=json", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "OAuth "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yandex userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yandex userinfo returned status %d", resp.StatusCode)
	}

	var info yandexUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode yandex userinfo: %w", err)
	}
	if info.ID == "" {
		return nil, fmt.Errorf("yandex userinfo has no id")
	}

	ext := &model.ExternalUser{
		Provider:   model.ProviderYandex,
		ExternalID: info.ID,
		Username:   info.DisplayName,
	}
	if info.DefaultEmail != "" {
		ext.Email = &info.DefaultEmail
	}
	return ext, nil
}
