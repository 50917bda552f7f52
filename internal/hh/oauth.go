package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ExchangeCode trades an authorization code for an access/refresh token pair.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (TokenResponse, error) {
	return c.tokenRequest(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
	})
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error) {
	return c.tokenRequest(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
}

// RevokeToken invalidates an access token; best effort.
func (c *Client) RevokeToken(ctx context.Context, token string) error {
	_, code, err := c.do(ctx, http.MethodDelete, c.cfg.BaseURL+"/oauth/token", token, nil)
	if err != nil {
		return err
	}
	if code != http.StatusNoContent {
		return &StatusError{Code: code}
	}
	return nil
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (TokenResponse, error) {
	b, code, err := c.do(ctx, http.MethodPost, c.cfg.OAuthURL+"/oauth/token", "", form)
	if err != nil {
		return TokenResponse{}, err
	}
	if code != http.StatusOK {
		var e struct {
			ErrorDescription string `json:"error_description"`
		}
		_ = json.Unmarshal(b, &e)
		if e.ErrorDescription == "" {
			e.ErrorDescription = truncate(string(b), 128)
		}
		return TokenResponse{}, fmt.Errorf("hh oauth: %s", e.ErrorDescription)
	}

	var tok TokenResponse
	if err := json.Unmarshal(b, &tok); err != nil {
		return TokenResponse{}, fmt.Errorf("hh oauth: decode token: %w", err)
	}
	return tok, nil
}
