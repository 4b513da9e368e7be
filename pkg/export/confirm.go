package export

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrOverwriteDeclined is returned when the user refuses to replace a file.
var ErrOverwriteDeclined = errors.New("overwrite declined")

// Overwrite decides whether an existing output file may be replaced.
type Overwrite struct {
	// Force skips the prompt.
	Force bool

	// Prompt asks the user; nil means use an interactive huh confirm
	// when stdin is a terminal and refuse otherwise.
	Prompt func(path string) (bool, error)
}

// Allow reports nil if path may be written.
func (o Overwrite) Allow(path string) error {
	if o.Force {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	prompt := o.Prompt
	if prompt == nil {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("%s exists (use --force to overwrite): %w", path, ErrOverwriteDeclined)
		}
		prompt = confirmOverwrite
	}
	ok, err := prompt(path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrOverwriteDeclined)
	}
	return nil
}

func confirmOverwrite(path string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("%s already exists. Overwrite?", path)).
		Affirmative("Overwrite").
		Negative("Keep").
		Value(&ok).
		Run()
	return ok, err
}
