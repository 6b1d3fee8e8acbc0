package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/corey/moebuild/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// colorOn returns code when stdout takes colors, otherwise "".
func colorOn(code string) string {
	if useColor() {
		return code
	}
	return ""
}

type palette bool

func (p palette) c(code string) string {
	if p {
		return code
	}
	return ""
}

// taskMark renders a task status as a single symbol.
func (p palette) taskMark(status string) string {
	switch status {
	case ports.TaskSucceeded:
		return p.c(colorGreen) + "✓" + p.c(colorReset)
	case ports.TaskFailed:
		return p.c(colorRed) + "✗" + p.c(colorReset)
	default:
		return p.c(colorGray) + "·" + p.c(colorReset)
	}
}

// formatRun formats a finished pipeline run for terminal display.
//
//	✓ build Release-iphoneos (app) │ 4 tasks │ 12.3s
//	  ✓ aot-compile[armv7]   3.1s
//	  ✗ native-build         8.9s  xcodebuild exited with code 65
//	  · package              not run
func formatRun(rec *ports.RunRecord, color bool) string {
	if rec == nil {
		return ""
	}
	p := palette(color)

	var sb strings.Builder
	head := p.c(colorGreen) + "✓" + p.c(colorReset)
	if !rec.Succeeded() {
		head = p.c(colorRed) + "✗" + p.c(colorReset)
	}
	fmt.Fprintf(&sb, "%s %sbuild %s-%s (%s)%s │ %d tasks │ %s\n",
		head, p.c(colorBold), rec.Mode, rec.Platform, rec.ProductType, p.c(colorReset),
		len(rec.Tasks), formatMs(rec.DurationMs))

	width := 0
	for _, t := range rec.Tasks {
		width = max(width, len(t.Name))
	}
	for _, t := range rec.Tasks {
		fmt.Fprintf(&sb, "  %s %-*s  ", p.taskMark(t.Status), width, t.Name)
		switch t.Status {
		case ports.TaskNotRun:
			fmt.Fprintf(&sb, "%snot run%s", p.c(colorGray), p.c(colorReset))
		case ports.TaskFailed:
			fmt.Fprintf(&sb, "%s  %s%s%s", formatMs(t.DurationMs), p.c(colorRed), t.Error, p.c(colorReset))
		default:
			sb.WriteString(formatMs(t.DurationMs))
		}
		sb.WriteString("\n")
	}
	if len(rec.Tasks) == 0 && rec.Error != "" {
		fmt.Fprintf(&sb, "  %s%s%s\n", p.c(colorRed), rec.Error, p.c(colorReset))
	}
	return sb.String()
}

// formatHistory formats recorded runs, newest first.
//
//	build history │ /work/app │ 2 runs
//	  2026-03-14 09:26:53  ✓  Release-iphoneos  app  12.3s  0b6f3c1e
//	  2026-03-14 09:20:11  ✗  Debug-iphonesimulator  app  4.0s  exit 65 (native-build)
func formatHistory(module string, runs []*ports.RunRecord, color bool) string {
	p := palette(color)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%sbuild history%s │ %s%s%s │ %d runs\n",
		p.c(colorBold), p.c(colorReset), p.c(colorCyan), module, p.c(colorReset), len(runs))

	for _, r := range runs {
		mark := p.taskMark(ports.TaskSucceeded)
		if !r.Succeeded() {
			mark = p.taskMark(ports.TaskFailed)
		}
		fmt.Fprintf(&sb, "  %s  %s  %s-%s  %s  %s  ",
			r.StartedAt.Local().Format(time.DateTime), mark, r.Mode, r.Platform, r.ProductType, formatMs(r.DurationMs))
		if r.Succeeded() {
			fmt.Fprintf(&sb, "%s%s%s\n", p.c(colorGray), shortID(r.ID), p.c(colorReset))
			continue
		}
		fmt.Fprintf(&sb, "%sexit %d%s", p.c(colorYellow), r.ExitCode, p.c(colorReset))
		if failed := failedTask(r); failed != "" {
			fmt.Fprintf(&sb, " (%s)", failed)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func failedTask(r *ports.RunRecord) string {
	for _, t := range r.Tasks {
		if t.Status == ports.TaskFailed {
			return t.Name
		}
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return d.String()
	}
	return d.Round(100 * time.Millisecond).String()
}
