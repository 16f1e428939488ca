//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the demo with the default configuration until interrupted.
func (Run) Demo() error {
	fmt.Println("Run featherwing...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "config/wing.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Renders two flaps worth of snapshots into the configured directory.
func (Run) Snapshots() error {
	mg.Deps(Build.Binary)
	fmt.Println("Writing snapshots...")
	if _, err := executeCmd("bin/featherwing", withArgs("-config", "config/wing.toml", "-snapshots", "-frames", "240"), withStream()); err != nil {
		return err
	}
	return nil
}
