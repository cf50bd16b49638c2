package snk

// Version is the release of the snk binary, set with -ldflags at build time.
var Version = "dev"
