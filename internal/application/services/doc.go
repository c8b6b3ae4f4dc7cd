// Package services holds the built-in endpoints that are not backed by a
// declared query: session login, user signup and the role guard applied to
// authenticated endpoints.
package services
