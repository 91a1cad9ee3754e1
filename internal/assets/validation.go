package assets

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// ValidateAssetName accepts bare names only: the loaders append the
// extension themselves, so dots are rejected along with path separators.
func ValidateAssetName(name string) error {
	if err := fileutil.ValidateName(name); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAssetName, name, err)
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("%w: %q contains a dot", ErrInvalidAssetName, name)
	}
	return nil
}
