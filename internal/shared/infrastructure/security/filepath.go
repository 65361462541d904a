// Package security validates the operator-supplied paths the host opens:
// state files it reads and plugin binaries it executes.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// dangerousChars contains shell metacharacters that could be used for injection attacks.
var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r"}

// ValidateFilePath cleans path, makes it absolute and resolves symlinks
// when the file exists. Paths carrying shell metacharacters are rejected.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}

	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("file path contains forbidden character %q: %s", char, path)
		}
	}

	cleanPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolvedPath, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cleanPath, nil
		}
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolvedPath, nil
}

// ValidateExecutable validates path and checks that it names an existing
// regular file with at least one execute bit set.
func ValidateExecutable(path string) (string, error) {
	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", cleanPath)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%s is not executable", cleanPath)
	}
	return cleanPath, nil
}

// SafeReadFile reads a file after validating the path.
func SafeReadFile(path string) ([]byte, error) {
	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(cleanPath)
}
