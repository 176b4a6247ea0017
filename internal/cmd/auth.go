package cmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/auth"
	gerrors "github.com/gsms/gsms/internal/errors"
	"github.com/gsms/gsms/internal/nav"
	"github.com/gsms/gsms/internal/ux"
)

func (c *CLI) newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the GSMS session",
		Long: `Log in to the GSMS backend, inspect the current session and log out.

The session token is kept in the configured session storage (a file under
~/.gsms by default) and reused by every other command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		c.newAuthLoginCmd(),
		c.newAuthLogoutCmd(),
		c.newAuthStatusCmd(),
		c.newAuthRefreshCmd(),
		c.newAuthTokenCmd(),
	)
	return cmd
}

type loginView struct {
	Username    string   `json:"username" yaml:"username"`
	UserID      int64    `json:"userId" yaml:"userId"`
	Permissions []string `json:"permissions" yaml:"permissions"`
	Continue    string   `json:"continue" yaml:"continue"`
}

func (v loginView) RenderText(s *ux.Styles) string {
	return s.Success.Render("Logged in as "+v.Username) + "\n" +
		s.Muted.Render(strconv.Itoa(len(v.Permissions))+" permissions loaded, continue at "+v.Continue)
}

func (c *CLI) newAuthLoginCmd() *cobra.Command {
	var username, password, redirect string
	var force bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the GSMS backend",
		Long: `Log in with a username and password. Missing credentials are prompted
for when running in a terminal.

After a successful login the command resolves where to continue: the
--redirect target (as printed by a refused command), else the default
landing route.`,
		Example: `  gsms auth login
  gsms auth login --username alice
  gsms auth login -u alice -p secret --redirect /users`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.session(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			res, err := a.Navigator.Navigate(ctx, nav.LoginPath)
			if err != nil {
				return err
			}
			if res.Kind == nav.RedirectDefault {
				if !force {
					message(cmd, "Already logged in as %s. Use --force to log in again.", a.Session.Username())
					return nil
				}
				if err := a.Logout(ctx); err != nil {
					return err
				}
			}

			username, password, err = c.prompt(username, password)
			if err != nil {
				return err
			}
			if _, err := a.Login(ctx, username, password); err != nil {
				return err
			}

			// --redirect takes a path or a full login location.
			target := nav.ReturnTarget(redirect, redirect)
			if target == "" {
				target = a.Config.Navigation.DefaultRoute
			}
			next, err := a.Navigator.Navigate(ctx, target)
			if err != nil {
				return err
			}
			if !next.Allowed() {
				target = next.Location
			}

			v := loginView{
				Username:    a.Session.Username(),
				UserID:      a.Session.UserID(),
				Permissions: a.Session.Permissions(),
				Continue:    target,
			}
			return c.output(cmd, v, v)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&redirect, "redirect", "", "path or login location to continue at after login")
	cmd.Flags().BoolVar(&force, "force", false, "log in again even when a session exists")
	return cmd
}

func (c *CLI) newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.session(cmd)
			if err != nil {
				return err
			}
			was := a.Session.Username()
			authenticated := a.Session.IsAuthenticated()
			if err := a.Logout(cmd.Context()); err != nil {
				return err
			}
			if !authenticated {
				message(cmd, "Not logged in.")
				return nil
			}
			message(cmd, "Logged out %s.", orDash(was))
			return nil
		},
	}
}

type statusView struct {
	Authenticated bool     `json:"authenticated" yaml:"authenticated"`
	UserID        int64    `json:"userId,omitempty" yaml:"userId,omitempty"`
	Username      string   `json:"username,omitempty" yaml:"username,omitempty"`
	Token         string   `json:"token,omitempty" yaml:"token,omitempty"`
	ExpiresAt     string   `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Permissions   []string `json:"permissions" yaml:"permissions"`
	Roles         []int64  `json:"roles" yaml:"roles"`
	Storage       string   `json:"storage" yaml:"storage"`
	Backend       string   `json:"backend" yaml:"backend"`
}

func (v statusView) RenderText(s *ux.Styles) string {
	if !v.Authenticated {
		return ux.KeyValues{
			Title: "Session",
			Pairs: [][2]string{
				{"Status", s.Warning.Render("not logged in")},
				{"Backend", v.Backend},
				{"Storage", v.Storage},
			},
		}.RenderText(s)
	}

	roles := make([]string, len(v.Roles))
	for i, r := range v.Roles {
		roles[i] = strconv.FormatInt(r, 10)
	}
	return ux.KeyValues{
		Title: "Session",
		Pairs: [][2]string{
			{"Status", s.Success.Render("logged in")},
			{"User", v.Username},
			{"User ID", itoa(v.UserID)},
			{"Token", v.Token},
			{"Expires", orDash(v.ExpiresAt)},
			{"Permissions", strconv.Itoa(len(v.Permissions))},
			{"Roles", orDash(strings.Join(roles, ", "))},
			{"Backend", v.Backend},
			{"Storage", v.Storage},
		},
	}.RenderText(s)
}

func (c *CLI) newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.session(cmd)
			if err != nil {
				return err
			}

			v := statusView{
				Authenticated: a.Session.IsAuthenticated(),
				Permissions:   a.Session.Permissions(),
				Roles:         a.Session.Roles(),
				Storage:       a.Config.Session.Backend,
				Backend:       a.Client.BaseURL(),
			}
			if v.Roles == nil {
				v.Roles = []int64{}
			}
			if v.Authenticated {
				v.UserID = a.Session.UserID()
				v.Username = a.Session.Username()
				v.Token = auth.Fingerprint(a.Session.Token())
				if p, err := a.Session.Payload(); err == nil && p.HasExpiry() {
					v.ExpiresAt = p.Expiry().Format(time.RFC3339)
				}
			}
			return c.output(cmd, v, v)
		},
	}
}

func (c *CLI) newAuthRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload permissions and roles from the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.session(cmd)
			if err != nil {
				return err
			}
			if !a.Session.IsAuthenticated() {
				return gerrors.NewNotLoggedInError()
			}
			if err := a.Session.RefreshAuth(cmd.Context()); err != nil {
				return gerrors.Wrap(gerrors.ErrCodeAPIRequest, "failed to refresh permissions", err)
			}
			message(cmd, "Loaded %d permissions and %d roles.", len(a.Session.Permissions()), len(a.Session.Roles()))
			return nil
		},
	}
}

type tokenView struct {
	UserID    int64                  `json:"userId" yaml:"userId"`
	Username  string                 `json:"username,omitempty" yaml:"username,omitempty"`
	IssuedAt  string                 `json:"issuedAt,omitempty" yaml:"issuedAt,omitempty"`
	ExpiresAt string                 `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Expired   bool                   `json:"expired" yaml:"expired"`
	Claims    map[string]interface{} `json:"claims" yaml:"claims"`
}

func (v tokenView) RenderText(s *ux.Styles) string {
	expiry := orDash(v.ExpiresAt)
	if v.Expired {
		expiry = s.Error.Render(expiry + " (expired)")
	}
	return ux.KeyValues{
		Title: "Token",
		Pairs: [][2]string{
			{"User ID", itoa(v.UserID)},
			{"Username", orDash(v.Username)},
			{"Issued", orDash(v.IssuedAt)},
			{"Expires", expiry},
		},
	}.RenderText(s)
}

func (c *CLI) newAuthTokenCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Show the decoded claims of the session token",
		Long: `Show the claims of the stored token. The signature is not verified; the
backend remains the authority on whether the token is accepted.

With --raw the bearer token itself is printed, for use in scripts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.session(cmd)
			if err != nil {
				return err
			}
			if !a.Session.IsAuthenticated() {
				return gerrors.NewNotLoggedInError()
			}
			if raw {
				message(cmd, "%s", a.Session.Token())
				return nil
			}

			p, err := a.Session.Payload()
			if err != nil {
				return gerrors.NewTokenMalformedError(err)
			}
			v := tokenView{
				UserID:   p.UserID,
				Username: p.Username,
				Expired:  p.Expired(time.Now()),
				Claims:   p.Claims,
			}
			if p.IssuedAt > 0 {
				v.IssuedAt = time.Unix(p.IssuedAt, 0).Format(time.RFC3339)
			}
			if p.HasExpiry() {
				v.ExpiresAt = p.Expiry().Format(time.RFC3339)
			}
			return c.output(cmd, v, v)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the raw bearer token")
	return cmd
}
