//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

const binary = "babelcast"

// Build builds the babelcast binary
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/babelcast")
}

// BuildPortAudio builds babelcast with PortAudio microphone capture
func BuildPortAudio() error {
	return sh.RunV("go", "build", "-tags", "portaudio", "-o", binary, "./cmd/babelcast")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs babelcast into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/babelcast")
}

// Clean removes the built binary
func Clean() error {
	return sh.Rm(binary)
}
