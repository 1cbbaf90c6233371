// Package google loads the OAuth token file at startup and builds the
// authenticated Gmail and Calendar services. It never writes the token file.
package google
