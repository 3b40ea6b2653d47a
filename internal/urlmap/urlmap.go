// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package urlmap implements the Path/URL Mapper of spec.md §4.4: resolving
// a root's protocol prefix into a (protocol, server, share) triple and
// deriving each file's logical URL from it. Grounded in spirit on
// cloudeng.io/path/cloudpath's scheme-prefix parsing, but specialized to
// the fixed `<protocol>/<server>/<share>/<rest>` layout spec.md describes
// rather than cloudpath's general matcher table.
package urlmap

import (
	"path/filepath"
	"strings"
)

// recognized protocol prefixes and the URL scheme each maps to.
var schemeForProtocol = map[string]string{
	"smb":   "file",
	"nfs":   "file",
	"ftp":   "ftp",
	"http":  "http",
	"https": "https",
}

// Target describes a crawl root's protocol prefix triple, used only to
// construct logical URLs (spec.md §3 Crawl Target).
type Target struct {
	Protocol string
	Server   string
	Share    string
	// prefixLen is the number of leading path segments of root consumed by
	// Protocol/Server/Share (0 when root has no recognized prefix).
	prefixLen int
	root      string
}

// Resolve parses root's protocol prefix, per spec.md §4.4: the first path
// segment is checked against the recognized protocol set; if recognized,
// the second and third segments become server and share.
//
// Open Question decision (SPEC_FULL.md §10.1): when the first segment is
// not recognized, Target's Server/Share are left empty and logical URLs
// for that root equal the physical path.
func Resolve(root string) Target {
	root = filepath.ToSlash(filepath.Clean(root))
	segs := strings.Split(strings.TrimPrefix(root, "/"), "/")
	if len(segs) >= 1 {
		if _, ok := schemeForProtocol[segs[0]]; ok {
			t := Target{Protocol: segs[0], root: root}
			if len(segs) >= 2 {
				t.Server = segs[1]
			}
			if len(segs) >= 3 {
				t.Share = segs[2]
			}
			t.prefixLen = minInt(3, len(segs))
			return t
		}
	}
	return Target{root: root}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// LogicalURL returns the logical URL for physicalPath, which must be
// rooted at t's original root. When t has no recognized protocol prefix,
// the logical URL equals physicalPath. Nested files get their URL from
// NestedURL instead, per spec.md §4.4's nested-file rule.
func (t Target) LogicalURL(physicalPath string) string {
	if t.Protocol == "" {
		return physicalPath
	}
	scheme := schemeForProtocol[t.Protocol]
	prefix := strings.Join([]string{t.Protocol, t.Server, t.Share}, "/")
	cleaned := strings.TrimPrefix(filepath.ToSlash(physicalPath), "/")
	rest := stripPrefix(cleaned, prefix)
	return scheme + "://" + t.Server + "/" + t.Share + rest
}

// NestedURL appends "#basename" to parentURL.
func NestedURL(parentURL, basename string) string {
	return parentURL + "#" + basename
}

func stripPrefix(path, root string) string {
	trimmed := strings.TrimPrefix(path, root)
	if !strings.HasPrefix(trimmed, "/") && trimmed != "" {
		trimmed = "/" + trimmed
	}
	return trimmed
}
