package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/kasa-lang/kasa/driver"
	"github.com/peterh/liner"
)

func main() {
	args := os.Args[1:]

	switch {
	case len(args) > 2:
		fmt.Println("Usage: kasa [phase] [script]")
		os.Exit(64)
	case len(args) == 2:
		os.Exit(runFile(driver.Phase(args[0]), args[1]))
	case len(args) == 1:
		os.Exit(runFile(driver.PhaseParse, args[0]))
	default:
		if err := runPrompt(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func runFile(phase driver.Phase, path string) int {
	bytes, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	r := driver.NewRunner(os.Stdin, os.Stdout, os.Stderr)
	r.Phase = phase
	r.RunSource(string(bytes))

	return r.ExitCode()
}

var history = filepath.Join(xdg.DataHome, "kasa", ".kasa_history")

func runPrompt() error {
	line := liner.NewLiner()
	defer func() {
		if err := os.MkdirAll(filepath.Dir(history), os.ModePerm); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if f, err := os.Create(history); err == nil {
			defer f.Close()
			if _, err := line.WriteHistory(f); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		line.Close()
	}()

	if f, err := os.Open(history); err == nil {
		defer f.Close()
		if _, err := line.ReadHistory(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	r := driver.NewRunner(os.Stdin, os.Stdout, os.Stderr)
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			// EOF or interrupt ends the session.
			return nil
		}
		line.AppendHistory(input)
		r.RunSource(input)
		r.ResetParseError()
	}
}
