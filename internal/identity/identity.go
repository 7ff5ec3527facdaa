// Package identity resolves the self-asserted email identity of the active
// learner and distinguishes the single admin account.
//
// This is an identity gate, not authentication: there is no password, no
// verification email and no server-side check. Admin capability is gated only
// by knowledge of one fixed email address, which is an accepted trust
// boundary for this application.
package identity

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Identity is a resolved learner or admin identity.
type Identity struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

var (
	foldCaser = cases.Fold()
	wordAtRe  = regexp.MustCompile(`\s+at\s+`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes an email input: trims, case-folds, rewrites the
// common "(at)", "[at]" and " at " obfuscations to "@" and strips any
// remaining whitespace.
func Normalize(input string) string {
	s := foldCaser.String(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "(at)", "@")
	s = strings.ReplaceAll(s, "[at]", "@")
	s = wordAtRe.ReplaceAllString(s, "@")
	return spaceRe.ReplaceAllString(s, "")
}

// Resolver classifies normalized emails against the admin allow-list.
type Resolver struct {
	adminEmail string
}

// NewResolver creates a resolver with the given admin address. The address
// itself is normalized so configuration typos in case or spacing do not
// silently disable the admin account.
func NewResolver(adminEmail string) *Resolver {
	return &Resolver{adminEmail: Normalize(adminEmail)}
}

// Resolve normalizes input and returns the identity it denotes. It reports
// ok=false when the normalized form is not a plausible email address.
func (r *Resolver) Resolve(input string) (Identity, bool) {
	email := Normalize(input)
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return Identity{}, false
	}
	return Identity{
		Email:   email,
		IsAdmin: email == r.adminEmail,
	}, true
}
