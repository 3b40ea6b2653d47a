// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package urlmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveUnrecognizedPrefix(t *testing.T) {
	target := Resolve("/local/data/finance")
	assert.Equal(t, "", target.Protocol)
	assert.Equal(t, "", target.Server)
	assert.Equal(t, "", target.Share)
}

func TestResolveRecognizedPrefix(t *testing.T) {
	target := Resolve("/smb/fs01/share")
	assert.Equal(t, "smb", target.Protocol)
	assert.Equal(t, "fs01", target.Server)
	assert.Equal(t, "share", target.Share)
}

func TestLogicalURLUnrecognizedPrefixEqualsPhysicalPath(t *testing.T) {
	target := Resolve("/local/data")
	got := target.LogicalURL("/local/data/finance/Q1.docx")
	assert.Equal(t, "/local/data/finance/Q1.docx", got)
}

func TestLogicalURLRecognizedPrefix(t *testing.T) {
	target := Resolve("/smb/fs01/share")
	got := target.LogicalURL("/smb/fs01/share/Finance/Q1.docx")
	assert.Equal(t, "file://fs01/share/Finance/Q1.docx", got)
}

func TestLogicalURLAtShareRoot(t *testing.T) {
	target := Resolve("/smb/fs01/share")
	got := target.LogicalURL("/smb/fs01/share")
	assert.Equal(t, "file://fs01/share", got)
}

func TestNestedURL(t *testing.T) {
	got := NestedURL("file://fs01/share/archive.zip", "report.docx")
	assert.Equal(t, "file://fs01/share/archive.zip#report.docx", got)
}
