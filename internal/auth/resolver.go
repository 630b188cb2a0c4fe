package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
)

var (
	// ErrInvalidToken is returned when the identity provider rejects the
	// access token.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
)

// Resolver turns an access token into session Props.
type Resolver interface {
	Resolve(ctx context.Context, accessToken string) (Props, error)
}

// UserInfoResolver asks the identity provider's userinfo endpoint who owns the
// access token.
type UserInfoResolver struct {
	URL     string
	Timeout time.Duration
	// Client is the base HTTP client; nil uses http.DefaultClient.
	Client *http.Client
}

type userInfo struct {
	Sub            string   `json:"sub"`
	Email          string   `json:"email"`
	EmailVerified  bool     `json:"email_verified"`
	GivenName      string   `json:"given_name"`
	FamilyName     string   `json:"family_name"`
	Picture        string   `json:"picture"`
	Permissions    []string `json:"permissions"`
	OrgID          string   `json:"org_id"`
	OrganizationID string   `json:"organization_id"`
}

func (r *UserInfoResolver) Resolve(ctx context.Context, accessToken string) (Props, error) {
	if strings.TrimSpace(accessToken) == "" {
		return Props{}, ErrMissingToken
	}
	if r.URL == "" {
		return Props{}, errors.New("userinfo endpoint not configured")
	}

	base := r.Client
	if base == nil {
		base = http.DefaultClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	if r.Timeout > 0 {
		client.Timeout = r.Timeout
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return Props{}, errors.Wrap(err, "build userinfo request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Props{}, errors.Wrap(err, "call userinfo endpoint")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Props{}, ErrInvalidToken
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Props{}, errors.Newf("userinfo endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Props{}, errors.Wrap(err, "read userinfo response")
	}
	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return Props{}, errors.Wrap(err, "decode userinfo response")
	}

	claims := Claims{
		Sub:        info.Sub,
		Email:      info.Email,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
	}
	org := info.OrgID
	if org == "" {
		org = info.OrganizationID
	}
	return Props{
		User:           UserFromClaims(claims, info.EmailVerified),
		AccessToken:    accessToken,
		Permissions:    Permissions(info.Permissions),
		OrganizationID: org,
		Claims:         claims,
	}, nil
}

// StaticResolver hands every token the same identity. It backs the stdio
// transport and local development without an identity provider.
type StaticResolver struct {
	Props Props
}

func (r StaticResolver) Resolve(_ context.Context, accessToken string) (Props, error) {
	props := r.Props
	props.AccessToken = accessToken
	return props, nil
}

// NewStaticProps builds Props for a fixed development identity.
func NewStaticProps(sub, email string, permissions []string) Props {
	claims := Claims{Sub: sub, Email: email}
	return Props{
		User:        UserFromClaims(claims, email != ""),
		Permissions: Permissions(permissions),
		Claims:      claims,
	}
}
