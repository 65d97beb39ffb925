// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads the Mendeley application credentials from a directory
// of plain-text files, one secret per file named by its key (ApplicationIDKey,
// ApplicationSecretKey). File contents are trimmed.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key files holding the Mendeley application credentials.
const (
	ApplicationIDKey     = "mendeley-application-id"
	ApplicationSecretKey = "mendeley-application-secret"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets/"

// credentialKeys are the key files the client-credentials exchange needs.
var credentialKeys = []string{ApplicationIDKey, ApplicationSecretKey}

// Missing returns the credential key files absent from loaded, in a fixed
// order. An empty result means both application ID and secret are present.
func Missing(loaded map[string]string) []string {
	var missing []string
	for _, key := range credentialKeys {
		if loaded[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
