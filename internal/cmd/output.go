package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/ux"
)

// output writes raw as JSON or YAML, or text through its renderer. The
// format flag wins over the configured default.
func (c *CLI) output(cmd *cobra.Command, raw interface{}, text ux.TextRenderer) error {
	gf, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}

	format, noColor := gf.format, gf.noColor
	if c.cfg != nil {
		if format == "" {
			format = c.cfg.Defaults.Format
		}
		noColor = noColor || c.cfg.Defaults.NoColor
	}

	f, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout(), NoColor: noColor})
	if err != nil {
		return err
	}
	if format == "" || format == "text" {
		return f.Format(text)
	}
	return f.Format(raw)
}

// message prints a one-line text result.
func message(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

func pageFooter(total int64, pageNum, pageSize, totalPages int) string {
	if totalPages <= 1 {
		return fmt.Sprintf("%d total", total)
	}
	return fmt.Sprintf("Page %d/%d (%d per page, %d total)", pageNum, totalPages, pageSize, total)
}

func footerOf[T any](p *api.Page[T]) string {
	return pageFooter(p.Total, p.PageNum, p.PageSize, p.TotalPages)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

func itoa(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func addPageFlags(cmd *cobra.Command, q *api.PageQuery) {
	cmd.Flags().IntVar(&q.PageNum, "page", 1, "page number")
	cmd.Flags().IntVar(&q.PageSize, "page-size", 10, "page size")
}
