package constants

// Static route constants
const (
	WebhookRoute  = "/webhook/:token"
	RedirectRoute = "/l/:slug"
	APIRoute      = "/api"
	// Redirect path prefix without parameter for URL construction
	RedirectPrefix = "/l/"
)
