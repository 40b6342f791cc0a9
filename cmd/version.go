package cmd

// Version is the application version, intended to be overridden at build
// time with ldflags:
// go build -ldflags "-X github.com/taiwan-rail-tools/thsrbook/cmd.Version=1.0.0"
var Version = "0.1.0"
