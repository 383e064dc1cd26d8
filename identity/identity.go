// Package identity issues and resolves the anonymous user id.
//
// An id is generated once per profile, persisted in the profile store and
// mirrored into a long-lived cookie. The display name is derived from the id
// on every call and never stored.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"hatesaway-server/core"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	CookieName   = core.UserIDKey
	CookieMaxAge = 31536000 // one year, in seconds

	fallbackName = "Anonymous #00000"
)

// CookieChannel is the fallback channel the id is mirrored into.
type CookieChannel interface {
	Cookie() (string, bool)
	SetCookie(c *http.Cookie)
}

type Provider struct {
	store   core.KVStore
	cookies CookieChannel
	newID   func() string
}

// NewProvider returns a provider over the profile store. cookies may be nil.
func NewProvider(store core.KVStore, cookies CookieChannel) *Provider {
	return &Provider{
		store:   store,
		cookies: cookies,
		newID:   func() string { return uuid.NewString() },
	}
}

// GetUserID returns the persisted id, creating it on first use. It returns
// "" when there is no usable profile store.
func (p *Provider) GetUserID(ctx context.Context) string {
	if !core.Available(p.store) {
		return ""
	}

	id, found, err := p.store.Get(ctx, core.UserIDKey)
	if err != nil {
		logrus.WithError(err).Warn("Failed to read user id")
		return ""
	}
	if found && id != "" {
		return id
	}

	if p.cookies != nil {
		if cid, ok := p.cookies.Cookie(); ok && cid != "" {
			if err := p.store.Set(ctx, core.UserIDKey, cid); err != nil {
				logrus.WithError(err).Warn("Failed to restore user id from cookie")
			}
			logrus.WithField("user_id", cid).Debug("User id restored from cookie")
			return cid
		}
	}

	id = p.newID()
	if err := p.store.Set(ctx, core.UserIDKey, id); err != nil {
		logrus.WithError(err).Warn("Failed to persist user id")
	}
	if p.cookies != nil {
		p.cookies.SetCookie(NewCookie(id))
	}
	logrus.WithField("user_id", id).Info("Issued anonymous user id")
	return id
}

// ClearUserID forgets the persisted id and expires the cookie.
func (p *Provider) ClearUserID(ctx context.Context) {
	if !core.Available(p.store) {
		return
	}
	if err := p.store.Remove(ctx, core.UserIDKey); err != nil {
		logrus.WithError(err).Warn("Failed to remove user id")
	}
	if p.cookies != nil {
		p.cookies.SetCookie(&http.Cookie{
			Name:   CookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1, // emitted as Max-Age=0
		})
	}
}

// NewCookie builds the mirror cookie for id.
func NewCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	}
}

// DisplayName maps an id to "Anonymous #NNNNN". The number is the leading
// hex value of the first eight characters (dashes removed) modulo 99999.
func DisplayName(userID string) string {
	if userID == "" {
		return fallbackName
	}
	hash := strings.ReplaceAll(userID, "-", "")
	if len(hash) > 8 {
		hash = hash[:8]
	}
	if len(hash) >= 2 && hash[0] == '0' && (hash[1] == 'x' || hash[1] == 'X') {
		hash = hash[2:]
	}
	end := 0
	for end < len(hash) && isHex(hash[end]) {
		end++
	}
	if end == 0 {
		return fallbackName
	}
	n, err := strconv.ParseUint(hash[:end], 16, 64)
	if err != nil {
		return fallbackName
	}
	return fmt.Sprintf("Anonymous #%05d", n%99999)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
