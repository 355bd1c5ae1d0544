package main

import "fmt"

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v2.0.4" ./cmd/flowconv/
var version = "dev"

func printVersion() {
	fmt.Println(version)
}
