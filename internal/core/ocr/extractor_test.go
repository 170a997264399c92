package ocr

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/quotation-tracker/internal/common"
)

type fakeRunner struct {
	stdout []byte
	stderr []byte
	err    error

	name      string
	args      []string
	fileBytes []byte
}

func (f *fakeRunner) Run(_ context.Context, cmd Command) (Output, error) {
	f.name = cmd.Name
	f.args = cmd.Args
	// input path is the second to last argument; it must exist while we run
	if len(cmd.Args) >= 2 {
		f.fileBytes, _ = os.ReadFile(cmd.Args[len(cmd.Args)-2])
	}
	return Output{Stdout: f.stdout, Stderr: f.stderr}, f.err
}

var samplePDF = []byte("%PDF-1.7\n%âãÏÓ\n1 0 obj\n")

func newTestExtractor(r Runner, cfg Config) *Extractor {
	return NewExtractor(cfg, nil).WithRunner(r)
}

func TestExtractPDF_JoinsPagesInOrder(t *testing.T) {
	r := &fakeRunner{stdout: []byte("Página 1\r\nCimento   R$ 32,50  \n\fPágina 2\n-----\nTotal\n\f")}
	e := newTestExtractor(r, Config{TempDir: t.TempDir(), MaxPages: 5})

	res, err := e.ExtractPDF(context.Background(), samplePDF)
	require.NoError(t, err)

	assert.Equal(t, "Página 1\nCimento   R$ 32,50\n\nPágina 2\n\nTotal\n", res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, "pdftotext", r.name)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix", "-l", "5"}, r.args[:7])
	assert.Equal(t, "-", r.args[len(r.args)-1])
	assert.Equal(t, samplePDF, r.fileBytes)

	_, statErr := os.Stat(r.args[len(r.args)-2])
	assert.True(t, os.IsNotExist(statErr), "spooled file should be removed")
}

func TestExtractPDF_ComposesAccents(t *testing.T) {
	// "Condição" with combining marks as some producers emit it
	r := &fakeRunner{stdout: []byte("Condic\u0327a\u0303o")}
	res, err := newTestExtractor(r, Config{TempDir: t.TempDir()}).ExtractPDF(context.Background(), samplePDF)
	require.NoError(t, err)
	assert.Equal(t, "Condi\u00e7\u00e3o", res.Text)
	assert.Len(t, []rune(res.Text), 8)
}

func TestExtractPDF_RejectsNonPDF(t *testing.T) {
	r := &fakeRunner{}
	e := newTestExtractor(r, Config{TempDir: t.TempDir()})

	for _, data := range [][]byte{nil, []byte("PK\x03\x04 not a pdf")} {
		_, err := e.ExtractPDF(context.Background(), data)
		assert.ErrorIs(t, err, common.ErrDecodeFailure)
	}
	assert.Empty(t, r.name, "runner must not be called")
}

func TestExtractPDF_CommandFailure(t *testing.T) {
	r := &fakeRunner{err: errors.New("exit status 3"), stderr: []byte("Command Line Error: Incorrect password\n")}
	_, err := newTestExtractor(r, Config{TempDir: t.TempDir()}).ExtractPDF(context.Background(), samplePDF)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDecodeFailure)
	assert.Contains(t, err.Error(), "Incorrect password")
}

func TestExtractPDF_DecoderExitError(t *testing.T) {
	r := &fakeRunner{err: &ExitError{Name: "pdftotext", Code: 1, Stderr: "Syntax Error: Couldn't find trailer dictionary"}}
	_, err := newTestExtractor(r, Config{TempDir: t.TempDir()}).ExtractPDF(context.Background(), samplePDF)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDecodeFailure)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, err.Error(), "trailer dictionary")
}

func TestExtractPDF_MissingBinary(t *testing.T) {
	r := &fakeRunner{err: &exec.Error{Name: "pdftotext", Err: exec.ErrNotFound}}
	_, err := newTestExtractor(r, Config{TempDir: t.TempDir()}).ExtractPDF(context.Background(), samplePDF)
	assert.ErrorIs(t, err, common.ErrDecoderUnavailable)
	assert.NotErrorIs(t, err, common.ErrDecodeFailure)
}

func TestExtractPDF_ScannedDocumentIsNotAnError(t *testing.T) {
	r := &fakeRunner{stdout: []byte("\f\f\f")}
	res, err := newTestExtractor(r, Config{TempDir: t.TempDir()}).ExtractPDF(context.Background(), samplePDF)
	require.NoError(t, err)
	assert.Equal(t, "\n\n", res.Text)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "a  b\nc", Normalize("a  b  \r\nc\t"))
	assert.Equal(t, "x\n\ny", Normalize("x\n______\ny"))
}
