// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package classify implements the Extractor Registry of spec.md §4.2: an
// ordered, declarative list of MIME-pattern -> class-tag entries with
// first-match semantics, backed by github.com/gabriel-vasile/mimetype for
// content sniffing (rather than trusting file extensions).
package classify

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Class is one of the closed set of document class tags spec.md §4.1
// step 2 defines.
type Class string

const (
	ClassHTML       Class = "html"
	ClassText       Class = "text"
	ClassWord       Class = "word"
	ClassExcel      Class = "excel"
	ClassPowerPoint Class = "powerpoint"
	ClassVisio      Class = "visio"
	ClassPDF        Class = "pdf"
	ClassLNK        Class = "lnk"
	ClassExecutable Class = "executable"
	ClassImage      Class = "image"
	ClassAudio      Class = "audio"
	ClassVideo      Class = "video"
	ClassThumbsDB   Class = "thumbsdb"
	ClassArchive    Class = "archive"
	ClassPackage    Class = "package"
	ClassBytecode   Class = "bytecode"
	ClassWinEvent   Class = "winevent"
	ClassMessage    Class = "message"
	ClassSQLite     Class = "sqlite"
	ClassPCAP       Class = "pcap"
	ClassRaw        Class = "raw"
	ClassUnknown    Class = "unknown"
)

// Entry is one row of the Extractor Registry: a set of MIME substrings (or
// exact matches) that map to a class tag. Entries are evaluated in slice
// order; the first entry with a matching pattern wins (spec.md §4.2's
// "pattern order is the tie-break").
type Entry struct {
	Class    Class
	Contains []string // any of these substrings appearing in the MIME type matches
	Exact    []string // exact MIME type matches
	Ext      []string // fallback: file extensions (without the dot), used only
	// when the sniffed MIME type is empty/octet-stream and the extension
	// is a strong signal (e.g. .lnk, .msg), mirroring the "unknown"
	// fallback's file-type probe in spec.md §4.2.
}

// DefaultRegistry is the ordered registry used by a crawl unless overridden.
// It mirrors the pattern families spec.md §4.1 step 2 calls out explicitly.
var DefaultRegistry = []Entry{
	{Class: ClassHTML, Contains: []string{"html"}},
	{Class: ClassPDF, Contains: []string{"pdf"}},
	{Class: ClassWord, Contains: []string{"msword", "wordprocessingml"}, Ext: []string{"doc", "docx"}},
	{Class: ClassExcel, Contains: []string{"ms-excel", "spreadsheetml"}, Ext: []string{"xls", "xlsx"}},
	{Class: ClassPowerPoint, Contains: []string{"ms-powerpoint", "presentationml"}, Ext: []string{"ppt", "pptx"}},
	{Class: ClassVisio, Contains: []string{"visio", "opendocument"}, Ext: []string{"vsd", "vsdx", "odt", "ods", "odp"}},
	{Class: ClassLNK, Contains: []string{"x-ms-shortcut"}, Ext: []string{"lnk"}},
	{Class: ClassThumbsDB, Exact: []string{"application/vnd.thumbsdb"}, Ext: []string{"db"}},
	{Class: ClassWinEvent, Ext: []string{"evtx"}},
	{Class: ClassMessage, Contains: []string{"rfc822", "ms-outlook"}, Ext: []string{"eml", "msg"}},
	{Class: ClassSQLite, Contains: []string{"sqlite"}},
	{Class: ClassPCAP, Contains: []string{"pcap", "vnd.tcpdump"}, Ext: []string{"pcap", "pcapng"}},
	{Class: ClassBytecode, Contains: []string{"x-python-bytecode"}, Ext: []string{"pyc"}},
	{Class: ClassExecutable, Contains: []string{"x-executable", "x-elf", "x-msdownload", "x-mach-binary"}},
	{Class: ClassArchive, Contains: []string{"zip", "rar", "tar", "gzip", "compressed", "msi", "java-archive", "x-archive", "x-7z", "x-bzip", "x-xz"}},
	{Class: ClassPackage, Contains: []string{"x-rpm", "x-debian-package"}},
	// Placed after every Ext-gated entry above (lnk/thumbsdb/evtx/msg/pyc
	// etc. all sniff as octet-stream themselves and rely on reaching their
	// own Ext fallback first); anything still untyped at this point is a
	// genuine opaque binary, not one of those special-cased formats.
	{Class: ClassRaw, Exact: []string{"application/octet-stream"}},
	{Class: ClassImage, Contains: []string{"image/"}},
	{Class: ClassAudio, Contains: []string{"audio/"}},
	{Class: ClassVideo, Contains: []string{"video/"}},
	{Class: ClassText, Contains: []string{"text/"}},
}

// Classify sniffs the file at path and returns the class assigned by the
// first matching registry entry, or ClassUnknown if none match. On a
// classification error (spec.md §7 "Classification errors") it returns
// ClassUnknown together with the error; the engine logs the error and
// carries on with ClassUnknown.
func Classify(path string, registry []Entry) (Class, string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return ClassUnknown, "", err
	}
	mimeStr := strings.ToLower(mtype.String())
	// The Ext fallback matches the file's own on-disk extension, not the
	// sniffer's guess: formats like .lnk/.evtx/.msg/Thumbs.db sniff as
	// application/octet-stream, so the filename suffix is the only signal
	// available to disambiguate them (spec.md §4.1 step 2).
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	for _, e := range registry {
		if matches(e, mimeStr, ext) {
			return e.Class, mimeStr, nil
		}
	}
	return ClassUnknown, mimeStr, nil
}

func matches(e Entry, mimeStr, ext string) bool {
	for _, m := range e.Exact {
		if mimeStr == strings.ToLower(m) {
			return true
		}
	}
	for _, c := range e.Contains {
		if strings.Contains(mimeStr, strings.ToLower(c)) {
			return true
		}
	}
	if mimeStr == "" || mimeStr == "application/octet-stream" {
		for _, want := range e.Ext {
			if ext == strings.ToLower(want) {
				return true
			}
		}
	}
	return false
}

// IsTextual reports whether a file classified as unknown still looks like
// plain text, used by the "unknown" fallback adapter (spec.md §4.2).
func IsTextual(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return strings.HasPrefix(mtype.String(), "text/")
}
