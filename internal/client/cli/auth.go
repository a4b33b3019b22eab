package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/identitykeeper/internal/client/client"
	"github.com/dmitrijs2005/identitykeeper/internal/common"
)

// getSimpleText and getPassword point to the interactive input helpers and
// are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = errors.New("passwords do not match")

// Register prompts for names, email and password and creates an account.
func (a *App) Register(ctx context.Context) error {
	firstName, err := getSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	id, err := a.client.Register(ctx, firstName, lastName, email, string(password))
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (%s)\n", email, id)
	return nil
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	session, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		return err
	}

	a.setUser(session.Email)
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Welcome, %s\n", displayName(session))
	return nil
}

// Logout revokes all refresh tokens of the account and ends the local session.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	n, err := a.client.Logout(ctx)
	a.setUser("")
	if err != nil {
		fmt.Fprintf(a.out, "Logout failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Logged out, %d refresh token(s) revoked\n", n)
	return nil
}

// ChangePassword asks for the current password and the new one twice.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	confirm, err := getPassword("Repeat new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(next, confirm) {
		fmt.Fprintln(a.out, errPasswordMismatch)
		return errPasswordMismatch
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.ChangePassword(ctx, string(current), string(next)); err != nil {
		fmt.Fprintf(a.out, "Password not changed: %v\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Password changed")
	return nil
}

func displayName(s *client.Session) string {
	if s.FirstName == "" && s.LastName == "" {
		return s.Email
	}
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
