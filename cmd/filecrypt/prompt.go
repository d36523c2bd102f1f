package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/TheMichaelB/filecrypt/internal/models"
)

// passwordEnv supplies the password non-interactively.
const passwordEnv = "FILECRYPT_PASSWORD"

var errPasswordMismatch = errors.New("passwords do not match")

// resolvePassword returns the flag value, then $FILECRYPT_PASSWORD, then asks
// on the terminal. confirm asks twice.
func resolvePassword(flagValue string, confirm bool) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(passwordEnv); env != "" {
		return env, nil
	}

	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", &models.MissingCredentialError{Credential: "password"}
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if password == "" {
		return "", &models.MissingCredentialError{Credential: "password"}
	}

	if confirm {
		again, err := promptPassword("Confirm password: ")
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if again != password {
			return "", errPasswordMismatch
		}
	}

	return password, nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	// Read password without echo
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // New line after password

	if err != nil {
		return "", err
	}

	return string(password), nil
}
