package platform

// Package platform contains OS/platform integration glue: directory and file
// helpers for the download tree, desktop path lookup, and OS open/reveal.
