// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package media implements the Media Extractor Adapter family of spec.md
// §4.3: image metadata + OCR, audio metadata + transcription, and video
// metadata + keyframe + audio-track extraction, all driven through
// external tools invoked via internal/cmdexec.
package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/durck/crawl/internal/cmdexec"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/scratch"
)

// Image extracts EXIF/IPTC metadata via exiftool and, unless OCR is
// disabled, runs tesseract over the image to recover any visible text.
var Image extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	meta, _ := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "exiftool",
		Args:    []string{"-s", path},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	})

	var sb strings.Builder
	sb.Write(meta.Stdout)

	if !cfg.OCRDisabled {
		if text, err := OCR(ctx, path, scratchDir, cfg); err == nil && text != "" {
			sb.WriteString(" ")
			sb.WriteString(text)
		}
	}

	if cfg.ImagesDir != "" {
		saveThumbnail(ctx, path, cfg)
	}
	return extract.Result{Text: strings.TrimSpace(sb.String())}, nil
}

// saveThumbnail writes a resized copy of the image into cfg.ImagesDir
// (spec.md §6's images-dir key), best-effort: a conversion failure never
// affects the extraction result.
func saveThumbnail(ctx context.Context, path string, cfg extract.Config) {
	if err := os.MkdirAll(cfg.ImagesDir, 0o755); err != nil {
		return
	}
	out := filepath.Join(cfg.ImagesDir, filepath.Base(path)+".png")
	cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "ffmpeg",
		Args:    []string{"-y", "-i", path, "-vf", "scale=320:-1", out},
		Timeout: cfg.ImageTimeout,
	})
}

// OCR runs tesseract over the image at path, with the configured language
// set and the adapter's image timeout (spec.md §6: image-timeout-seconds).
func OCR(ctx context.Context, path, scratchDir string, cfg extract.Config) (string, error) {
	args := []string{path, "stdout"}
	if len(cfg.OCRLanguages) > 0 {
		args = append(args, "-l", strings.Join(cfg.OCRLanguages, "+"))
	}
	res, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "tesseract",
		Args:    args,
		Dir:     scratchDir,
		Timeout: cfg.ImageTimeout,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// Audio extracts tag metadata via ffprobe and, unless audio processing is
// disabled, a speech-to-text transcript via an external whisper-style
// tool, bounded by the configured audio timeout (spec.md §6:
// audio-timeout-seconds).
var Audio extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	meta, _ := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "ffprobe",
		Args:    []string{"-v", "quiet", "-show_format", "-show_streams", path},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	})

	var sb strings.Builder
	sb.Write(meta.Stdout)

	if !cfg.AudioDisabled {
		res, err := cmdexec.Run(ctx, cmdexec.Spec{
			Path:    "whisper-cli",
			Args:    []string{"--output_format", "txt", "--output_dir", scratchDir, path},
			Dir:     scratchDir,
			Timeout: cfg.AudioTimeout,
		})
		if err == nil {
			sb.WriteString(" ")
			sb.Write(res.Stdout)
		}
	}
	return extract.Result{Text: strings.TrimSpace(sb.String())}, nil
}

// Video extracts container/stream metadata via ffprobe, then demuxes a
// keyframe image and the audio track into the scratch directory the
// engine gave this extraction and returns both as Nested entries, so the
// engine re-enters them as fresh Image/Audio extractions under their own
// per-class deadlines (spec.md §4.3's "keyframe sampling + audio track
// extraction into scratch for re-entry"; spec.md §5: "nested expansion
// time is not counted against the parent's deadline"). An earlier
// revision ran OCR and transcription inline here, synchronously, under
// Video's own single deadline — exactly the violation spec.md §5 warns
// against.
var Video extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	meta, _ := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "ffprobe",
		Args:    []string{"-v", "quiet", "-show_format", "-show_streams", path},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	})
	var sb strings.Builder
	sb.Write(meta.Stdout)

	var nested []extract.Nested

	keyframe := filepath.Join(scratchDir, "keyframe.png")
	if _, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "ffmpeg",
		Args:    []string{"-y", "-i", path, "-vframes", "1", keyframe},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	}); err == nil && !cfg.OCRDisabled {
		nested = append(nested, extract.Nested{Name: "keyframe.png", Path: keyframe})
	}

	audioTrack := filepath.Join(scratchDir, "audio.wav")
	if _, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "ffmpeg",
		Args:    []string{"-y", "-i", path, "-vn", "-ac", "1", audioTrack},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	}); err == nil && !cfg.AudioDisabled {
		nested = append(nested, extract.Nested{Name: "audio.wav", Path: audioTrack})
	}

	return extract.Result{Text: strings.TrimSpace(sb.String()), Nested: nested}, nil
}
