package core

import (
	"encoding/json"
	"fmt"
)

// PageLoadError is returned once the retry budget for a page is exhausted.
// Cause holds the last transport error or block classification seen.
type PageLoadError struct {
	URL   string
	Cause error
}

func (e *PageLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.URL, e.Cause)
}

func (e *PageLoadError) Unwrap() error { return e.Cause }

// AccessDeniedError means the request was rejected by an anti-bot layer
// (cloudflare headers or challenge keywords in the body). Retrying from the
// same network will not help; changing VPN/proxy might.
type AccessDeniedError struct {
	URL    string
	Status int
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf(
		"access denied by bot protection (status %d) at %s, this is usually caused by your network environment (VPN/proxy/datacenter IP), not by the data you requested",
		e.Status, e.URL,
	)
}

// PrivateRouteError means the resource exists but the site restricts access
// to it, e.g. a private profile or watchlist. No retry or network change will
// fix it.
type PrivateRouteError struct {
	URL    string
	Status int
}

func (e *PrivateRouteError) Error() string {
	return fmt.Sprintf("route is access-restricted (status %d): %s", e.Status, e.URL)
}

// NotFoundError means the site answered 404 for the resource.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// InvalidResponseError is any other non-200 response, or markup that could
// not be parsed at all.
type InvalidResponseError struct {
	URL     string
	Status  int
	Reason  string
	Message string
}

func (e *InvalidResponseError) Error() string {
	blob, err := json.Marshal(map[string]any{
		"code":    e.Status,
		"reason":  e.Reason,
		"url":     e.URL,
		"message": e.Message,
	})
	if err != nil {
		return fmt.Sprintf("invalid response (status %d) from %s: %s", e.Status, e.URL, e.Message)
	}
	return fmt.Sprintf("invalid response: %s", blob)
}

// ExtractError wraps the narrow failure that occurs when a required container
// is absent from a page, naming what was being extracted.
type ExtractError struct {
	What  string
	Cause error
}

func (e *ExtractError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("extracting %s: required container missing", e.What)
	}
	return fmt.Sprintf("extracting %s: %v", e.What, e.Cause)
}

func (e *ExtractError) Unwrap() error { return e.Cause }
