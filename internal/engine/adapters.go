// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package engine

import (
	"github.com/durck/crawl/internal/classify"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/extract/archive"
	"github.com/durck/crawl/internal/extract/mail"
	"github.com/durck/crawl/internal/extract/media"
	"github.com/durck/crawl/internal/extract/office"
	"github.com/durck/crawl/internal/extract/opaque"
	"github.com/durck/crawl/internal/extract/pdf"
	"github.com/durck/crawl/internal/extract/text"
	"github.com/durck/crawl/internal/extract/winfmt"
)

// DefaultAdapters maps every class tag in the closed enumeration
// (spec.md §4.1 step 2) to the Extractor Adapter family that handles it,
// per the component table of spec.md §4.3.
func DefaultAdapters() map[classify.Class]extract.Adapter {
	return map[classify.Class]extract.Adapter{
		classify.ClassHTML:       text.HTML,
		classify.ClassText:       text.Plain,
		classify.ClassUnknown:    text.Fallback,
		classify.ClassWord:       office.WordAny,
		classify.ClassExcel:      office.ExcelAny,
		classify.ClassPowerPoint: office.Packaged,
		classify.ClassVisio:      office.Packaged,
		classify.ClassPDF:        pdf.Adapter,
		classify.ClassLNK:        winfmt.LNK,
		classify.ClassExecutable: winfmt.Executable,
		classify.ClassImage:      media.Image,
		classify.ClassAudio:      media.Audio,
		classify.ClassVideo:      media.Video,
		classify.ClassThumbsDB:   winfmt.ThumbsDB,
		classify.ClassArchive:    archive.Generic,
		classify.ClassPackage:    archive.Package,
		classify.ClassBytecode:   opaque.Bytecode,
		classify.ClassWinEvent:   winfmt.EVTX,
		classify.ClassMessage:    mail.Any,
		classify.ClassSQLite:     opaque.SQLite,
		classify.ClassPCAP:       opaque.PCAP,
		classify.ClassRaw:        opaque.Raw,
	}
}
