// Package router maps navigation requests to effective views.
//
// Resolve is a pure function of its two inputs, the requested view and the
// current session. It carries no memory of prior views, so the same request
// against the same session always lands on the same screen.
package router

import "github.com/quillchat/quill/internal/auth"

// View identifies a screen in the client.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewOnboarding
	ViewChat
	ViewDashboard
)

// String returns the view's route name.
func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewOnboarding:
		return "onboarding"
	case ViewChat:
		return "chat"
	case ViewDashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

// Public reports whether the view is reachable without a session.
func (v View) Public() bool {
	return v == ViewLogin || v == ViewRegister
}

// Resolve applies the navigation rules:
//
//  1. A protected view without a session falls back to login.
//  2. A public view with a session present redirects: onboarding while the
//     user's preference setup is incomplete, chat otherwise.
//  3. Anything else renders as requested.
func Resolve(requested View, sess *auth.Session) View {
	if sess == nil {
		if requested.Public() {
			return requested
		}
		return ViewLogin
	}

	if requested.Public() {
		if !sess.User.OnboardingComplete() {
			return ViewOnboarding
		}
		return ViewChat
	}

	return requested
}
