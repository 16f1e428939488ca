//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the featherwing binary into bin/.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/featherwing", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Tidies the module and regenerates sources.
func (Build) Tidy() error {
	return goTidy()
}

type Test mg.Namespace

// Runs every test with the race detector.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Runs the wing animation tests only.
func (Test) Wing() error {
	_, err := executeCmd("go", withArgs("test", "-v", "."), withDir("wing"), withStream())
	return err
}
