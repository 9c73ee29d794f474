// Package command contains the registrar's write operations. Each handler
// validates its command, applies it to the registrar, logs the outcome and
// publishes a domain event.
package command
