package portal

import (
	"context"
	"net/http"
)

// SignIn exchanges credentials for a token pair. The request carries no
// bearer header and never triggers the auth-failure hook.
func (c *Client) SignIn(ctx context.Context, email, password string) (Credentials, error) {
	body := map[string]string{"email": email, "password": password}
	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/signin/", body, &creds, requestOptions{skipAuth: true}); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// SignUp registers a new account. Like SignIn it runs without a session.
func (c *Client) SignUp(ctx context.Context, email, password, passwordConfirm string) (Credentials, error) {
	body := map[string]string{
		"email":            email,
		"password":         password,
		"password_confirm": passwordConfirm,
	}
	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/signup/", body, &creds, requestOptions{skipAuth: true}); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// Profile fetches the account behind the current access token.
func (c *Client) Profile(ctx context.Context) (Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/profile/", nil, &account, requestOptions{}); err != nil {
		return Account{}, err
	}
	return account, nil
}
