//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target when running mage without arguments.
var Default = Build

// Build builds the server binary.
func Build() error {
	mg.Deps(Generate)
	fmt.Println("Building server...")
	return sh.Run("go", "build", "-o", "bin/server", "./cmd/server")
}

// Generate runs all code generation (wire, swagger).
func Generate() error {
	mg.Deps(Wire, Docs)
	return nil
}

// Wire regenerates the injector in internal/app.
func Wire() error {
	fmt.Println("Running wire...")
	return sh.Run("wire", "./internal/app")
}

// Docs regenerates the swagger spec served at /swagger.
func Docs() error {
	fmt.Println("Generating swagger docs...")
	return sh.Run("swag", "init",
		"--generalInfo", "cmd/server/docs.go",
		"--output", "cmd/server/docs",
		"--outputTypes", "go",
		"--parseInternal",
	)
}

// Test runs all tests.
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-v", "-race", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	fmt.Println("Running linter...")
	return sh.Run("golangci-lint", "run", "./...")
}

// Dev builds and runs the server for development.
// ARK_API_KEY must be set in the environment or in .env.
func Dev() error {
	mg.Deps(Build)
	if os.Getenv("ARK_API_KEY") == "" {
		if _, err := os.Stat(".env"); err != nil {
			return fmt.Errorf("ARK_API_KEY not set in environment or .env")
		}
	}
	fmt.Println("Starting server...")
	cmd := exec.Command("./bin/server")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
