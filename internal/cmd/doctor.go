package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	gerrors "github.com/gsms/gsms/internal/errors"
	"github.com/gsms/gsms/internal/health"
	"github.com/gsms/gsms/internal/ux"
)

// tokenExpiryWarning is how close to expiry a token is reported as degraded.
const tokenExpiryWarning = 10 * time.Minute

type doctorView health.Report

func (v doctorView) RenderText(s *ux.Styles) string {
	t := ux.Table{Headers: []string{"CHECK", "STATUS", "LATENCY", "MESSAGE"}}
	for _, c := range v.Checks {
		t.Rows = append(t.Rows, []string{c.Name, statusText(s, c.Status), c.Latency.Round(time.Millisecond).String(), c.Message})
	}
	return t.RenderText(s) + "\n\nOverall: " + statusText(s, v.Status)
}

func statusText(s *ux.Styles, st health.Status) string {
	switch st {
	case health.StatusHealthy:
		return s.Success.Render(st.String())
	case health.StatusDegraded:
		return s.Warning.Render(st.String())
	default:
		return s.Error.Render(st.String())
	}
}

func (c *CLI) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check session storage, backend and token health",
		Long: `Run diagnostics against the configured session storage, the backend and
the stored token. The command fails when any check is unhealthy; degraded
checks such as a logged-out session are reported but do not fail.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.session(cmd)
			if err != nil {
				// A failed restore is what the storage check reports.
				if c.app == nil {
					return err
				}
				a = c.app
			}
			rep := health.Run(cmd.Context(), a.Config.API.Timeout,
				health.NewStorageChecker(a.Storage, a.Config.Session.Backend),
				health.NewBackendChecker(a.Client),
				health.NewTokenChecker(a.Session, tokenExpiryWarning),
			)
			v := doctorView(rep)
			if err := c.output(cmd, v, v); err != nil {
				return err
			}
			if failed := rep.Failed(); len(failed) > 0 {
				return gerrors.New(gerrors.ErrCodeAPIRequest, "unhealthy: "+strings.Join(failed, ", "))
			}
			return nil
		},
	}
}
