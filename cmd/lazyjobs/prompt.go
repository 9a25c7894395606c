package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Joseda-hg/lazyjobs/internal/api"
	"github.com/Joseda-hg/lazyjobs/internal/auth"
	"golang.org/x/term"
)

var stdin = bufio.NewReader(os.Stdin)

func signIn(ctx context.Context, client *api.Client, tokens *auth.TokenStore, register bool) error {
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	var session api.Session
	if register {
		name, err := promptLine("Name: ")
		if err != nil {
			return err
		}
		session, err = client.Register(ctx, email, password, name)
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
	} else {
		session, err = client.Login(ctx, email, password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	if err := tokens.Save(session.Token); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s. Session saved to %s.\n", session.User.Email, tokens.Path())
	return nil
}

func forgotPassword(ctx context.Context, client *api.Client) error {
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	message, err := client.ForgotPassword(ctx, email)
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	fmt.Println(message)
	return nil
}

func resetPassword(ctx context.Context, client *api.Client, token string) error {
	valid, err := client.VerifyResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("verify reset token: %w", err)
	}
	if !valid {
		return fmt.Errorf("reset token is invalid or expired")
	}

	password, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := client.ResetPassword(ctx, token, password); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	fmt.Println("Password updated. Run with -login to sign in.")
	return nil
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when stdin is a terminal.
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(label)
	}
	fmt.Print(label)
	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(password), nil
}
