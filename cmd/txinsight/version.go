package main

// Version is the version of the application.
// This can be overridden at build time using ldflags.
var Version = "v0.1.0"

// Commit and BuildTime are set at build time using ldflags.
var (
	Commit    = "dev"
	BuildTime = "unknown"
)
