package main

import (
	"fmt"
	"os"
	"strings"
)

var availableLoggingLevels = []string{"panic", "fatal", "error", "warn", "info", "debug", "trace"}

// config holds the flags shared by every command.
type config struct {
	Detector     string
	File         string
	Region       string
	Count        int
	Seed         uint64
	Workers      int
	LoggingLevel string
}

func (c config) validate() error {
	if err := validateLoggingLevel(c.LoggingLevel); err != nil {
		return err
	}
	if (c.Detector == "") == (c.File == "") {
		return fmt.Errorf("exactly one of --detector or --file must be given")
	}
	if c.Count < 0 {
		return fmt.Errorf("count %d must not be negative", c.Count)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers %d must be at least 1", c.Workers)
	}
	return nil
}

func validateLoggingLevel(level string) error {
	for _, l := range availableLoggingLevels {
		if l == level {
			return nil
		}
	}
	return fmt.Errorf("logging level %q is not one of [%s]", level, strings.Join(availableLoggingLevels, ", "))
}

// source returns the detector description named by --file.
func (c config) source() (string, error) {
	b, err := os.ReadFile(c.File)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
