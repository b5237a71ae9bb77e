package main

import (
	"os"
	"strings"

	"storyview/internal/cli"
)

func isStoryID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "story-") && len(s) > len("story-")
}

// rewriteDeepLinkArgs makes `storyview <story-id>` work like
// `storyview view --story <story-id>`. Cobra reads the first positional
// token as a subcommand, so argv is rewritten before parsing. Persistent
// flags may come first, so the first positional is searched for.
func rewriteDeepLinkArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without their value so a story id is never
	// swallowed.
	valueFlags := map[string]bool{
		"--dir":    true,
		"--config": true,
		"--user":   true,
		"--format": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Everything after "--" would go to the root command as args,
			// so the separator is dropped from the rewrite.
			if i+1 < len(argv) && isStoryID(argv[i+1]) {
				out := make([]string, 0, len(argv)+1)
				out = append(out, argv[:i]...)
				out = append(out, "view", "--story")
				out = append(out, argv[i+1:]...)
				return out
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		// First positional token.
		if isStoryID(a) {
			out := make([]string, 0, len(argv)+2)
			out = append(out, argv[:i]...)
			out = append(out, "view", "--story")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDeepLinkArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
