package bili

// Package bili is a small client for the Bilibili web API: WBI request
// signing, key discovery, video and stream resolution, and creator listings.
// Every call returns a typed result carrying the raw body, or a *Error with
// a Kind describing the failure.
