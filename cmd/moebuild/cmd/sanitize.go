package cmd

import (
	"errors"
	"fmt"

	"github.com/corey/moebuild/internal/adapters/ahocorasick"
	"github.com/corey/moebuild/internal/domain/pipeline"
	"github.com/corey/moebuild/internal/domain/sanitizer"
	"github.com/spf13/cobra"
)

var (
	sanitizeStart    string
	sanitizeEnd      string
	sanitizeKeywords []string
	sanitizeScope    string
	sanitizeCheck    bool
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize <project.pbxproj>",
	Short: "Strip the shell script section from a project descriptor",
	Long: "Deletes every line from the section start marker through the end marker, then\n" +
		"fails if a forbidden keyword survives. With --check the file is only scanned.",
	Args: cobra.ExactArgs(1),
	RunE: runSanitize,
}

func init() {
	f := sanitizeCmd.Flags()
	f.StringVar(&sanitizeStart, "start", sanitizer.DefaultSectionStart, "Section start marker")
	f.StringVar(&sanitizeEnd, "end", sanitizer.DefaultSectionEnd, "Section end marker")
	f.StringSliceVar(&sanitizeKeywords, "keyword", []string{sanitizer.DefaultKeyword}, "Forbidden keywords")
	f.StringVar(&sanitizeScope, "scan-scope", string(sanitizer.ScopeRemainder), "Scan the remainder after stripping, or the original file")
	f.BoolVar(&sanitizeCheck, "check", false, "Only scan for forbidden keywords; do not modify the file")
}

func runSanitize(cmd *cobra.Command, args []string) error {
	path := args[0]
	scope, err := sanitizer.ParseScope(sanitizeScope)
	if err != nil {
		return err
	}
	m, err := ahocorasick.NewMatcher(sanitizeKeywords...)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	if sanitizeCheck {
		finding, err := sanitizer.Find(path, m)
		if err != nil {
			return err
		}
		if finding != nil {
			return fmt.Errorf("%w: %q at %s:%d: %s", pipeline.ErrSecurity, finding.Keyword, path, finding.Line, finding.Text)
		}
		fmt.Printf("%s✓%s %s clean\n", colorOn(colorGreen), colorOn(colorReset), path)
		return nil
	}

	s := &sanitizer.Sanitizer{Start: sanitizeStart, End: sanitizeEnd, Matcher: m, Scope: scope}
	res, err := s.Sanitize(path)
	if errors.Is(err, sanitizer.ErrForbidden) {
		return fmt.Errorf("%w: %w", pipeline.ErrSecurity, err)
	}
	if err != nil {
		return err
	}
	log.Debug().Str("descriptor", path).Int("removed", res.Removed).Msg("sanitized")
	fmt.Printf("%s✓%s %s: %d lines removed\n", colorOn(colorGreen), colorOn(colorReset), path, res.Removed)
	return nil
}
