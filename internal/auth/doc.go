// Package auth provides oauth2 token sources for the document store: a static
// bearer token, or a Firebase Authentication ID token obtained by email and
// password sign-in and reused until it expires.
package auth
