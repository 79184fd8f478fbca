package server

import "github.com/jrsteele09/varix-web/auth"

// Route path constants
const (
	// Marketing
	RouteHome    = "/"
	RoutePricing = "/pricing"
	RouteAbout   = "/about"
	RoutePrivacy = "/privacy"
	RouteTerms   = "/terms"
	RouteContact = "/contact"

	// Auth
	RouteLogin          = auth.LoginPath
	RouteSignup         = "/signup"
	RouteOAuthStart     = "/auth/oauth/{provider}"
	RouteCallback       = auth.CallbackPath
	RouteLogout         = "/auth/logout"
	RouteForgotPassword = auth.ForgotPasswordPath
	RouteResetPassword  = auth.RecoveryPath

	// Dashboard
	RouteApp        = auth.AppPath
	RouteFileView   = "/app/files/{id}/view"
	RouteFileDelete = "/app/files/{id}/delete"
	RouteUpload     = "/app/upload"

	// API
	RouteAPIValidatePassword = "/api/validate-password"

	// Operations
	RouteMetrics = "/metrics"
	RouteHealthz = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
