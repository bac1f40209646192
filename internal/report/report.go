// Package report renders the dry-run view of a schedule. The output is meant
// for people, not for parsing.
package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/gookit/color"

	"github.com/vk/devmaker/internal/job"
)

// Reporter writes dry-run reports.
type Reporter struct {
	w       io.Writer
	job     color.Style
	info    color.Style
	colored bool
}

// New returns a Reporter writing to w. With colored unset the output is
// plain text.
func New(w io.Writer, colored bool) *Reporter {
	return &Reporter{
		w:       w,
		job:     color.New(color.FgBlue, color.OpBold),
		info:    color.New(color.OpFuzzy),
		colored: colored,
	}
}

func (r *Reporter) style(s color.Style, text string) string {
	if !r.colored {
		return text
	}
	return s.Sprint(text)
}

// Job renders a single job. num is its 1-based position in the schedule.
func (r *Reporter) Job(num int, j job.Resolved) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Would run job %03d: %s", num, r.style(r.job, j.Name))
	for _, d := range j.Depends {
		b.WriteString("\n")
		b.WriteString(r.style(r.info, "  Depends on: "+d))
	}
	if j.HasDepsScript {
		b.WriteString("\n")
		b.WriteString(r.style(r.info, "  Deps.sh: yes"))
	}
	for _, k := range slices.Sorted(maps.Keys(j.Env)) {
		b.WriteString("\n")
		b.WriteString(r.style(r.info, "  Env: "+k+" -> "+j.Env[k]))
	}
	return b.String()
}

// Write renders every job of the schedule, in order.
func (r *Reporter) Write(jobs []job.Resolved) error {
	for i, j := range jobs {
		if _, err := fmt.Fprintln(r.w, r.Job(i+1, j)); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}
