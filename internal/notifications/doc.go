// Package notifications delivers optional admin alerts through ntfy. With no
// topic configured every call is a cheap no-op.
package notifications
