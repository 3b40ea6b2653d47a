// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Secrets holds credentials for downstream collaborators (SMB/LDAP/IMAP
// mount helpers, the search-index service). LoadSecrets is its loader;
// neither the crawl engine nor any cmd/docindex subcommand calls it.
type Secrets struct {
	SMBUser          string `yaml:"smb_user"`
	SMBPassword      string `yaml:"smb_password"`
	LDAPBindDN       string `yaml:"ldap_bind_dn"`
	LDAPPassword     string `yaml:"ldap_password"`
	IMAPUser         string `yaml:"imap_user"`
	IMAPPassword     string `yaml:"imap_password"`
	SearchIndexToken string `yaml:"search_index_token"`
}

// RequireSecretFilePerms fails closed if path has any group or world
// permission bit set.
// Windows does not expose POSIX permission bits through os.FileInfo, so
// the check is a no-op there, matching the platform split used throughout
// the teacher's os/ package.
func RequireSecretFilePerms(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm()&0o077 != 0 {
		return fmt.Errorf("secrets file %s must not be group/world accessible (mode %v)", path, info.Mode().Perm())
	}
	return nil
}

// LoadSecrets reads and parses the secrets file at path, first verifying
// its permissions.
func LoadSecrets(path string) (Secrets, error) {
	var s Secrets
	if err := RequireSecretFilePerms(path); err != nil {
		return s, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("secrets: parsing %s: %w", path, err)
	}
	return s, nil
}
