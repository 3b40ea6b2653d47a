// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package mail implements the Mail Extractor Adapter family of spec.md
// §4.3: RFC 822 .eml messages via the standard library's net/mail and
// mime/multipart, and legacy Outlook .msg messages via an external
// converter (no pack dependency speaks the OLE-based MSG container).
package mail

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/durck/crawl/internal/cmdexec"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/scratch"
)

// EML parses an RFC 822 message, returning its decoded body as Text and
// one Nested entry per attachment materialized into a scratch directory,
// per spec.md §4.3's "unpack mail attachments as nested documents" rule.
var EML extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return extract.Result{}, err
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return extract.Result{}, fmt.Errorf("mail: parsing %s: %w", path, err)
	}

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		body, err := decodeBody(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
		if err != nil {
			return extract.Result{}, err
		}
		return extract.Result{Text: body}, nil
	}

	dest := scratchDir

	var sb strings.Builder
	var nested []extract.Nested
	mr := multipart.NewReader(msg.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		filename := part.FileName()
		if filename == "" {
			body, _ := decodeBody(part, part.Header.Get("Content-Transfer-Encoding"))
			sb.WriteString(body)
			sb.WriteString(" ")
			continue
		}
		outPath := filepath.Join(dest, filepath.Base(filename))
		out, err := os.Create(outPath)
		if err != nil {
			continue
		}
		io.Copy(out, part)
		out.Close()
		nested = append(nested, extract.Nested{Name: filename, Path: outPath})
	}

	return extract.Result{Text: strings.TrimSpace(sb.String()), Nested: nested}, nil
}

// Any dispatches on extension between EML and MSG, so the engine can wire
// a single adapter to classify.ClassMessage while still reaching both the
// native RFC 822 parser and the external MSG converter.
var Any extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".msg") {
		return MSG(ctx, path, scratchDir, mgr, cfg)
	}
	return EML(ctx, path, scratchDir, mgr, cfg)
}

func decodeBody(r io.Reader, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// MSG handles legacy Outlook .msg messages via an external converter
// (msgconvert-style tool on PATH) that renders the message to an .eml
// file in scratch, which is then parsed the same way as EML.
var MSG extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	outPath := filepath.Join(scratchDir, "message.eml")
	if _, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "msgconvert",
		Args:    []string{"--outfile", outPath, path},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	}); err != nil {
		return extract.Result{}, err
	}
	return EML.Extract(ctx, outPath, scratchDir, mgr, cfg)
}
