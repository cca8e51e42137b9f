// Package nav resolves URL fragments to page IDs for the single-page shell.
package nav

import "strings"

// Page identifies a renderable page of the site shell.
type Page string

const (
	PageHome          Page = "home"
	PageAbout         Page = "about"
	PageServices      Page = "services"
	PageWhy           Page = "why"
	PagePricing       Page = "pricing"
	PagePartner       Page = "partner"
	PageROI           Page = "roi"
	PageResetPassword Page = "reset-password"
)

var fragmentPages = map[string]Page{
	"about-page":    PageAbout,
	"services-page": PageServices,
	"why-page":      PageWhy,
	"pricing-page":  PagePricing,
	"partner-page":  PagePartner,
	"roi-page":      PageROI,
}

// Resolve maps a URL fragment to a page. A recovery fragment wins over
// everything else; empty or unrecognized fragments fall back to home.
func Resolve(fragment string) Page {
	if IsRecoveryFragment(fragment) {
		return PageResetPassword
	}
	frag := strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	if p, ok := fragmentPages[frag]; ok {
		return p
	}
	return PageHome
}

// IsRecoveryFragment reports whether the fragment carries the identity
// provider's password-recovery markers (token plus recovery type).
func IsRecoveryFragment(fragment string) bool {
	return strings.Contains(fragment, "type=recovery") &&
		strings.Contains(fragment, "access_token=")
}

// ResolveEvent maps a session-change notification to a page. Recovery events
// force the reset-password page through the same resolution path as
// fragments; everything else leaves navigation alone and reports false.
func ResolveEvent(passwordRecovery bool) (Page, bool) {
	if passwordRecovery {
		return Resolve("#access_token=pending&type=recovery"), true
	}
	return PageHome, false
}
