package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/identitykeeper/internal/client/client"
)

func (a *App) Profile(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	p, err := a.client.Profile(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Profile unavailable: %v\n", err)
		return err
	}

	a.printProfile(p)
	return nil
}

// UpdateProfile prompts for new names; an empty answer keeps the old value.
func (a *App) UpdateProfile(ctx context.Context) error {
	firstName, err := getSimpleText(a.reader, "First name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name (empty to keep)", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	p, err := a.client.UpdateProfile(ctx, optional(firstName), optional(lastName))
	if err != nil {
		fmt.Fprintf(a.out, "Profile not updated: %v\n", err)
		return err
	}

	a.printProfile(p)
	return nil
}

func (a *App) printProfile(p *client.Session) {
	fmt.Fprintf(a.out, "ID:         %s\n", p.AccountID)
	fmt.Fprintf(a.out, "Email:      %s\n", p.Email)
	fmt.Fprintf(a.out, "First name: %s\n", p.FirstName)
	fmt.Fprintf(a.out, "Last name:  %s\n", p.LastName)
	if p.IsFederated {
		fmt.Fprintln(a.out, "Signed in with Google; password changes are disabled")
	}
}
