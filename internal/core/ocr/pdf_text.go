package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/quotation-tracker/internal/common"
)

// the header may follow a few junk bytes; readers accept it within the first KB
const pdfHeaderScan = 1024

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (ExtractionResult, error) {
	if len(data) == 0 {
		return ExtractionResult{}, fmt.Errorf("%w: empty document", common.ErrDecodeFailure)
	}
	head := data
	if len(head) > pdfHeaderScan {
		head = head[:pdfHeaderScan]
	}
	if !bytes.Contains(head, []byte("%PDF-")) {
		return ExtractionResult{}, fmt.Errorf("%w: missing PDF header", common.ErrDecodeFailure)
	}

	f, err := os.CreateTemp(e.cfg.TempDir, "qt-quote-*.pdf")
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("spool document: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			e.logger.Warn("failed to remove spooled document", "path", path, "error", err)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return ExtractionResult{}, fmt.Errorf("spool document: %w", err)
	}
	if err := f.Close(); err != nil {
		return ExtractionResult{}, fmt.Errorf("spool document: %w", err)
	}

	text, pages, warns, err := e.pdfToText(ctx, path)
	if err != nil {
		return ExtractionResult{Warnings: warns}, err
	}
	return ExtractionResult{
		Text:     text,
		Pages:    pages,
		Method:   "pdf-text",
		Warnings: warns,
	}, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, "-")

	out, err := e.runner.Run(ctx, Command{Name: e.cfg.Pdftotext, Args: args})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", 0, nil, ctxErr
		}
		if errors.Is(err, common.ErrDecoderUnavailable) {
			return "", 0, nil, err
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", 0, nil, fmt.Errorf("%w: %s: %v", common.ErrDecoderUnavailable, e.cfg.Pdftotext, err)
		}
		stderr := strings.TrimSpace(string(out.Stderr))
		var exitErr *ExitError
		if errors.As(err, &exitErr) || stderr == "" {
			return "", 0, []string{stderr}, fmt.Errorf("%w: %w", common.ErrDecodeFailure, err)
		}
		return "", 0, []string{stderr}, fmt.Errorf("%w: %s: %v: %s", common.ErrDecodeFailure, e.cfg.Pdftotext, err, truncate(stderr, 512))
	}

	text, pages = joinPages(string(out.Stdout))
	return text, pages, nil, nil
}

// joinPages splits pdftotext output on form feeds, normalizes each page and
// joins them in order with a newline.
func joinPages(raw string) (string, int) {
	parts := strings.Split(raw, "\f")
	// pdftotext terminates every page with \f, leaving an empty tail
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	for i := range parts {
		parts[i] = Normalize(parts[i])
	}
	return strings.Join(parts, "\n"), len(parts)
}
