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

const (
	binary    = "bin/aria-server"
	wireDir   = "./internal/app"
	coverFile = "coverage.out"
)

// Default target when running mage without arguments.
var Default = Build

// Test groups the test targets.
type Test mg.Namespace

// Build compiles the server into bin/.
func Build() error {
	mg.Deps(Wire)
	fmt.Println("==> build", binary)
	return sh.RunV("go", "build", "-trimpath", "-o", binary, "./cmd/server")
}

// Wire regenerates the dependency graph in internal/app.
func Wire() error {
	fmt.Println("==> wire", wireDir)
	return sh.RunV("wire", "gen", wireDir)
}

// Unit runs the whole suite. Redis adapter tests skip themselves unless
// ARIA_TEST_REDIS_ADDR is set.
func (Test) Unit() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Cover writes a coverage profile to coverage.out.
func (Test) Cover() error {
	if err := sh.RunV("go", "test", "-covermode=atomic", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func="+coverFile)
}

// Redis runs the Redis adapter tests against ARIA_TEST_REDIS_ADDR,
// defaulting to a local server.
func (Test) Redis() error {
	addr := os.Getenv("ARIA_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	fmt.Println("==> redis tests against", addr)
	env := map[string]string{"ARIA_TEST_REDIS_ADDR": addr}
	return sh.RunWithV(env, "go", "test", "-count=1", "./internal/adapter/outbound/redis/...")
}

// Lint runs go vet and golangci-lint.
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes the binary and coverage output. wire_gen.go is checked in
// and is left alone.
func Clean() error {
	for _, p := range []string{"bin", coverFile} {
		if err := sh.Rm(p); err != nil {
			return err
		}
	}
	return nil
}

// CI is the pipeline run on every push.
func CI() {
	mg.SerialDeps(Wire, Lint, Test.Cover, Build)
}

// Dev builds and runs the server. ARIA_CONFIG names the config file.
func Dev() error {
	mg.Deps(Build)
	var args []string
	if path := os.Getenv("ARIA_CONFIG"); path != "" {
		args = append(args, "-config", path)
	}
	cmd := exec.Command("./"+binary, args...)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	return cmd.Run()
}

// Tools installs wire and golangci-lint.
func Tools() error {
	for _, tool := range []string{
		"github.com/google/wire/cmd/wire@latest",
		"github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
	} {
		if err := sh.RunV("go", "install", tool); err != nil {
			return fmt.Errorf("install %s: %w", tool, err)
		}
	}
	return nil
}
