package onedrive

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Path validation errors
var (
	ErrPathTraversal = errors.New("path traversal attack detected")
	ErrInvalidPath   = errors.New("invalid path")
	ErrUnsafePath    = errors.New("unsafe path detected")
)

const (
	MaxFileNameLength = 255
	MaxPathLength     = 400
)

// CleanRemotePath validates a drive path and returns it in canonical form:
// absolute, without redundant separators.
func CleanRemotePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}
	if strings.Contains(p, "\x00") {
		return "", fmt.Errorf("%w: null bytes not allowed in path", ErrUnsafePath)
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: path contains path traversal elements", ErrPathTraversal)
		}
	}
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: OneDrive paths must be absolute (start with /)", ErrInvalidPath)
	}

	cleaned := path.Clean(p)
	if len(cleaned) > MaxPathLength {
		return "", fmt.Errorf("%w: path too long (max %d characters)", ErrInvalidPath, MaxPathLength)
	}
	if i := strings.IndexAny(cleaned, `<>:"|?*`); i >= 0 {
		return "", fmt.Errorf("%w: path contains invalid character '%c'", ErrInvalidPath, cleaned[i])
	}
	return cleaned, nil
}

var reservedNames = []string{
	"CON", "PRN", "AUX", "NUL",
	"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
	"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
}

// ValidateFileName checks if a filename is valid for OneDrive.
func ValidateFileName(filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: filename cannot be empty", ErrInvalidPath)
	}
	if len(filename) > MaxFileNameLength {
		return fmt.Errorf("%w: filename too long (max %d characters)", ErrInvalidPath, MaxFileNameLength)
	}
	if i := strings.IndexAny(filename, `<>:"/\|?*`); i >= 0 {
		return fmt.Errorf("%w: filename contains invalid character '%c'", ErrInvalidPath, filename[i])
	}

	upper := strings.ToUpper(filename)
	for _, reserved := range reservedNames {
		if upper == reserved || strings.HasPrefix(upper, reserved+".") {
			return fmt.Errorf("%w: filename '%s' is reserved", ErrInvalidPath, filename)
		}
	}

	if strings.HasSuffix(filename, ".") || strings.HasSuffix(filename, " ") {
		return fmt.Errorf("%w: filename cannot end with period or space", ErrInvalidPath)
	}
	return nil
}
