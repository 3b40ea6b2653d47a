// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package office implements the Office Extractor Adapter families of
// spec.md §4.3: OLE-era compound documents (legacy .doc/.xls, handled via
// an external converter) and zip-over-XML packaged documents (.docx/.xlsx/
// .pptx and OpenDocument equivalents), unpacked with
// github.com/mholt/archiver/v3 and read with encoding/xml.
package office

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v3"

	"github.com/durck/crawl/internal/cmdexec"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/scratch"
)

// packagedMember names the canonical XML part holding body text for each
// packaged format this adapter understands.
var packagedMember = map[string][]string{
	".docx": {"word/document.xml"},
	".xlsx": {"xl/sharedStrings.xml"},
	".pptx": {"ppt/slides/slide"}, // prefix match, multiple slide{n}.xml members
	".odt":  {"content.xml"},
	".ods":  {"content.xml"},
	".odp":  {"content.xml"},
}

// mediaPrefix identifies embedded-media member paths, used to set
// Result.HasMedia when the document's own text is sparse (spec.md §4.3's
// "probe for embedded media, gated on a minimum-text threshold" rule).
var mediaPrefix = []string{"word/media/", "xl/media/", "ppt/media/", "Pictures/"}

// WordAny dispatches on extension between the legacy OLE .doc and the
// packaged .docx, so the engine can wire a single adapter per class tag
// while still reaching both Compound's external-converter path
// and the packaged zip+XML path.
var WordAny extract.AdapterFunc = dispatchCompoundOrPackaged(".doc")

// ExcelAny is WordAny's counterpart for .xls vs .xlsx.
var ExcelAny extract.AdapterFunc = dispatchCompoundOrPackaged(".xls")

func dispatchCompoundOrPackaged(legacyExt string) extract.AdapterFunc {
	return func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
		if strings.EqualFold(filepath.Ext(path), legacyExt) {
			return Compound(ctx, path, scratchDir, mgr, cfg)
		}
		return Packaged(ctx, path, scratchDir, mgr, cfg)
	}
}

// Packaged handles zip-over-XML office formats: docx, xlsx, pptx and the
// OpenDocument family.
var Packaged extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	members, ok := packagedMember[ext]
	if !ok {
		members = []string{"word/document.xml", "content.xml"}
	}

	var sb strings.Builder
	var mediaMembers []string
	err := archiver.Walk(path, func(f archiver.File) error {
		defer f.Close()
		name := f.Name()
		for _, want := range members {
			if name == want || (strings.HasSuffix(want, "/") == false && strings.HasPrefix(name, want)) {
				if txt, err := extractXMLText(f); err == nil {
					sb.WriteString(txt)
					sb.WriteString(" ")
				}
			}
		}
		for _, p := range mediaPrefix {
			if strings.HasPrefix(name, p) {
				mediaMembers = append(mediaMembers, name)
			}
		}
		return nil
	})
	if err != nil {
		return extract.Result{}, err
	}

	text := strings.TrimSpace(sb.String())
	result := extract.Result{Text: text}
	if len(mediaMembers) > 0 && len(text) < cfg.OCRMinText {
		result.HasMedia = true
		// Per-document OCR fan-out cap (spec.md §4.1 step 5); archives
		// unpacked by the archive package are not subject to this limit.
		if max := cfg.OCRMaxImages; max > 0 && len(mediaMembers) > max {
			mediaMembers = mediaMembers[:max]
		}
		nested, err := extractMedia(path, scratchDir, mediaMembers)
		if err == nil {
			result.Nested = nested
		}
	}
	return result, nil
}

// extractMedia re-reads path and copies each of mediaMembers (embedded
// image parts already identified by the text pass above) out of the zip
// into scratchDir, returning one Nested entry per image for the OCR
// re-entry pass spec.md §4.3 describes.
func extractMedia(path, scratchDir string, mediaMembers []string) ([]extract.Nested, error) {
	want := make(map[string]struct{}, len(mediaMembers))
	for _, m := range mediaMembers {
		want[m] = struct{}{}
	}
	var nested []extract.Nested
	err := archiver.Walk(path, func(f archiver.File) error {
		defer f.Close()
		name := f.Name()
		if _, ok := want[name]; !ok {
			return nil
		}
		outPath := filepath.Join(scratchDir, filepath.Base(name))
		out, err := os.Create(outPath)
		if err != nil {
			return nil
		}
		defer out.Close()
		if _, err := io.Copy(out, f); err != nil {
			return nil
		}
		nested = append(nested, extract.Nested{Name: filepath.Base(name), Path: outPath})
		return nil
	})
	return nested, err
}

// extractXMLText accumulates character data from an XML document, which is
// sufficient to recover readable body text from document.xml/content.xml
// without modeling the full WordprocessingML/ODF schema.
func extractXMLText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sb.String(), err
		}
		if cd, ok := tok.(xml.CharData); ok {
			sb.Write(cd)
			sb.WriteByte(' ')
		}
	}
	return sb.String(), nil
}

// Compound handles legacy OLE-era .doc/.xls via an external converter
// (antiword/catdoc-style tool on PATH), invoked through internal/cmdexec
// with the adapter's configured command timeout, per spec.md §4.1's
// per-class timeout discipline.
var Compound extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	tool := "antiword"
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		tool = "xls2csv"
	}
	res, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    tool,
		Args:    []string{path},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	})
	if err != nil {
		return extract.Result{}, err
	}
	return extract.Result{Text: strings.TrimSpace(string(res.Stdout))}, nil
}
