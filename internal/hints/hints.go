// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// PandocInstallURL is the upstream installation guide.
const PandocInstallURL = "https://pandoc.org/installing.html"

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// IsInCI reports whether a common CI environment variable is set.
func IsInCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForPandocMissing returns hints for a pandoc binary that cannot be found.
// Container and CI environments get a package-manager suggestion.
func ForPandocMissing() string {
	var hints []string

	if IsInContainer() || IsInCI() {
		hints = append(hints, "add pandoc to the image (e.g. apt-get install -y pandoc)")
	} else {
		hints = append(hints, "install pandoc from "+PandocInstallURL)
	}

	if os.Getenv("MD2DOCX_PANDOC") == "" {
		hints = append(hints, "or point --pandoc-path / MD2DOCX_PANDOC at the binary")
	}
	hints = append(hints, "or use --strategy html")

	return formatHints(hints)
}

// ForPandocFailed returns a hint for a pandoc run that exited with an error.
func ForPandocFailed() string {
	return format("pandoc's message above usually names the offending line or template part")
}

// ForMalformedTemplate returns a hint for template files that are not .docx packages.
func ForMalformedTemplate() string {
	return format("the template must be a .docx saved by Word, LibreOffice or " +
		"pandoc (pandoc -o ref.docx --print-default-data-file reference.docx)")
}

// ForEmptyInput returns a hint for blank Markdown input.
func ForEmptyInput() string {
	return format("write some Markdown first; whitespace-only input is rejected")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-md2docx/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/go-md2docx) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-md2docx") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnknownStrategy lists the accepted strategy names.
func ForUnknownStrategy(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
