// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth.go - login, register, and logout commands.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"

	"github.com/bot360/bot360-tui/internal/api"
)

// promptCredentials reads username and password interactively. The
// password never echoes.
func promptCredentials(confirm bool) (username, password string, err error) {
	if !IsTTY() {
		return "", "", errors.New("credentials require an interactive terminal")
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	username, err = line.Prompt("Username: ")
	if err != nil {
		return "", "", err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", errors.New("username must not be empty")
	}

	password, err = line.PasswordPrompt("Password: ")
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", errors.New("password must not be empty")
	}

	if confirm {
		again, err := line.PasswordPrompt("Confirm password: ")
		if err != nil {
			return "", "", err
		}
		if again != password {
			return "", "", errors.New("passwords do not match")
		}
	}
	return username, password, nil
}

// HandleLogin signs in and stores the token pair.
func HandleLogin(args Args) {
	_, client := Setup(args)

	username, password, err := promptCredentials(false)
	if err != nil {
		Fatalf("Login aborted: %v", err)
	}

	ctx, cancel := SignalContext()
	defer cancel()

	if err := client.Login(ctx, username, password); err != nil {
		if errors.Is(err, api.ErrAuthFailed) {
			Fatalf("Login failed: check your username and password.")
		}
		Fatalf("Login failed: %v", err)
	}
	fmt.Println(SuccessStyle.Render("Signed in as " + username + "."))
}

// HandleRegister creates an account and signs in.
func HandleRegister(args Args) {
	_, client := Setup(args)

	username, password, err := promptCredentials(true)
	if err != nil {
		Fatalf("Registration aborted: %v", err)
	}

	ctx, cancel := SignalContext()
	defer cancel()

	if err := client.Register(ctx, username, password); err != nil {
		Fatalf("Registration failed: %v", err)
	}
	if err := client.Login(ctx, username, password); err != nil {
		fmt.Println(SuccessStyle.Render("Account created.") +
			DimStyle.Render(" Run `bot360 login` to sign in."))
		return
	}
	fmt.Println(SuccessStyle.Render("Account created and signed in as " + username + "."))
}

// HandleLogout clears the stored session.
func HandleLogout(args Args) {
	_, client := Setup(args)
	if err := client.Logout(); err != nil {
		Fatalf("Logout failed: %v", err)
	}
	fmt.Println(SuccessStyle.Render("Signed out."))
}
