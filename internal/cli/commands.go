package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/memberhub/memberhub/internal/member"
	"github.com/memberhub/memberhub/internal/portalapi"
	"github.com/memberhub/memberhub/internal/session"
)

// Login prompts for credentials and authenticates. Empty-field checks
// live here, in the view layer, not in the controller.
func (a *App) Login(ctx context.Context) error {
	user, err := GetSimpleText(a.reader, "Member ID", a.out)
	if err != nil {
		return err
	}
	if user == "" {
		return errors.New("member ID must not be empty")
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	if _, err := a.controller.Login(ctx, user, password); err != nil {
		fmt.Fprintf(a.out, "login failed: %s\n", session.DisplayMessage(err))
		return err
	}
	fmt.Fprintln(a.out, "logged in")
	return nil
}

// Logout ends the session. It never fails.
func (a *App) Logout() error {
	a.controller.Logout()
	fmt.Fprintln(a.out, "logged out")
	return nil
}

// Whoami prints the current identity from the store.
func (a *App) Whoami() error {
	snap := a.store.State()
	if snap.Phase != session.PhaseAuthenticated || snap.Identity == nil {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}
	id := snap.Identity
	fmt.Fprintf(a.out, "subject:  %s\nrole:     %s\nname:     %s\nemail:    %s\ndob:      %s\nexpires:  %s\n",
		id.Subject, id.Role, id.UserName, id.Email, id.DateOfBirth, id.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}

// Members lists the caller's group.
func (a *App) Members(ctx context.Context) error {
	if !a.requireSession() {
		return errors.New("not logged in")
	}
	records, err := a.client.GroupMembers(ctx)
	if err != nil {
		return a.reportAuthedError(ctx, err)
	}

	w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tDOB")
	for _, rec := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", rec.ID, rec.UserName, rec.EmailID, rec.DoB)
	}
	return w.Flush()
}

// Update edits a member record. Admin only; the server enforces the role.
func (a *App) Update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	id := fs.Int("id", 0, "member ID to update")
	name := fs.String("name", "", "new user name")
	email := fs.String("email", "", "new email")
	dob := fs.String("dob", "", "new date of birth (YYYY-MM-DD)")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("-id is required")
	}
	if !a.requireSession() {
		return errors.New("not logged in")
	}

	var patch member.Patch
	if *name != "" {
		patch.UserName = name
	}
	if *email != "" {
		patch.EmailID = email
	}
	if *dob != "" {
		patch.DoB = dob
	}
	if patch.Empty() {
		return errors.New("nothing to update, pass -name, -email or -dob")
	}

	rec, err := a.client.UpdateMember(ctx, *id, patch)
	if err != nil {
		return a.reportAuthedError(ctx, err)
	}
	fmt.Fprintf(a.out, "updated member %d: %s <%s>\n", rec.ID, rec.UserName, rec.EmailID)
	return nil
}

// Add creates a member with the server's default password. Admin only.
func (a *App) Add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.String("name", "", "user name")
	email := fs.String("email", "", "email")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		return errors.New("-name and -email are required")
	}
	if !a.requireSession() {
		return errors.New("not logged in")
	}

	id, err := a.client.AddMember(ctx, *name, *email)
	if err != nil {
		return a.reportAuthedError(ctx, err)
	}
	fmt.Fprintf(a.out, "created member %d\n", id)
	return nil
}

func (a *App) requireSession() bool {
	return a.store.State().Phase == session.PhaseAuthenticated
}

// reportAuthedError handles failures of authenticated requests. A
// 401-class rejection means the token went bad mid-session: trigger
// re-validation, which clears it and downgrades to anonymous.
func (a *App) reportAuthedError(ctx context.Context, err error) error {
	var rejected *portalapi.ServerRejectedError
	if errors.As(err, &rejected) && rejected.Status == 401 {
		a.controller.Revalidate(ctx)
		fmt.Fprintln(a.out, "session expired, please log in again")
		return err
	}
	fmt.Fprintf(a.out, "request failed: %s\n", session.DisplayMessage(err))
	return err
}
