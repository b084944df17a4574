// Package httputil provides the JSON and HTML response helpers shared by the
// tracking handlers, so every endpoint reports errors with the same envelope
// and logs internal failures through the structured logger.
package httputil
