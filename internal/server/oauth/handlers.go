package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/identitykeeper/internal/common"
	"github.com/dmitrijs2005/identitykeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

const (
	stateCookie    = "oauth2_state"
	verifierCookie = "oauth2_verifier"
	cookieMaxAge   = 300
)

// authorize starts the authorization code flow with PKCE. State and verifier
// live in short-lived cookies until the callback.
func (s *HTTPServer) authorize(c *gin.Context) {
	state, err := common.MakeRandHexString(16)
	if err != nil {
		s.logger.Error(c.Request.Context(), "state generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	verifier := oauth2.GenerateVerifier()

	s.setCookie(c, stateCookie, state, cookieMaxAge)
	s.setCookie(c, verifierCookie, verifier, cookieMaxAge)

	c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier)))
}

func (s *HTTPServer) callback(c *gin.Context) {
	ctx := c.Request.Context()

	state, _ := c.Cookie(stateCookie)
	verifier, _ := c.Cookie(verifierCookie)
	s.setCookie(c, stateCookie, "", -1)
	s.setCookie(c, verifierCookie, "", -1)

	if e := c.Query("error"); e != "" {
		s.logger.Info(ctx, "provider returned error", "error", e, "description", c.Query("error_description"))
		s.fail(c, e)
		return
	}

	code := c.Query("code")
	if code == "" || state == "" || c.Query("state") != state {
		s.logger.Info(ctx, "invalid callback state")
		s.fail(c, "invalid state")
		return
	}

	token, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		s.logger.Warn(ctx, "code exchange failed", "error", err)
		s.fail(c, "authentication failed")
		return
	}

	claims, err := s.userInfo(c, token)
	if err != nil {
		s.logger.Warn(ctx, "userinfo request failed", "error", err)
		s.fail(c, "authentication failed")
		return
	}

	assertion, err := services.NewAssertion(claims)
	if err != nil {
		s.fail(c, err.Error())
		return
	}

	result, err := s.sessions.FederatedLogin(ctx, assertion)
	if err != nil {
		if errors.Is(err, common.ErrMissingEmail) {
			s.fail(c, err.Error())
			return
		}
		s.logger.Error(ctx, "federated login failed", "error", err)
		s.fail(c, "authentication failed")
		return
	}

	s.redirect(c, url.Values{
		"token":        {result.AccessToken},
		"refreshToken": {result.RefreshToken},
		"id":           {result.Account.ID},
		"email":        {result.Account.Email},
		"firstName":    {result.Account.FirstName},
		"lastName":     {result.Account.LastName},
	})
}

func (s *HTTPServer) userInfo(c *gin.Context, token *oauth2.Token) (map[string]any, error) {
	resp, err := s.oauth.Client(c.Request.Context(), token).Get(s.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo: unexpected status %d", resp.StatusCode)
	}

	var claims map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	return claims, nil
}

func (s *HTTPServer) fail(c *gin.Context, reason string) {
	s.redirect(c, url.Values{"error": {reason}})
}

// redirect sends the browser to the frontend with params appended to any
// query the configured URI already has.
func (s *HTTPServer) redirect(c *gin.Context, params url.Values) {
	target, err := url.Parse(s.frontend)
	if err != nil {
		s.logger.Error(c.Request.Context(), "invalid frontend redirect uri", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	q := target.Query()
	for k, v := range params {
		q[k] = v
	}
	target.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, target.String())
}

func (s *HTTPServer) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", c.Request.TLS != nil, true)
}
