package library

// Package library tracks followed creators and finds their uploads that are
// newer than the last sync.
