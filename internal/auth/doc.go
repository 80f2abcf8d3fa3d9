// Package auth implements login for the admin console: credential checks,
// persisted sessions and the HTTP middleware that loads the current user.
package auth
