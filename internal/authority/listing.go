package authority

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteUsers renders the user registry as an aligned table.
func (s *Store) WriteUsers(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tNAME\tEMAIL\tROLES\tSETUP")
	for _, u := range s.users {
		name := u.Profile.FirstName + " " + u.Profile.LastName
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n",
			u.Username, dash(name), dash(u.Email()), u.Roles, u.SetupComplete)
	}
	return tw.Flush()
}

// WriteInvitations renders the outstanding invitations as an aligned table.
func (s *Store) WriteInvitations(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tUSERNAME\tEMAIL\tROLES")
	for _, code := range s.inviteOrder {
		inv := s.invitations[code]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", inv.Code, inv.Username, dash(inv.Email), inv.Roles)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" || s == " " {
		return "-"
	}
	return s
}
