package ocr

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/quotation-tracker/internal/common"
)

func TestExecRunner_MissingDecoder(t *testing.T) {
	_, err := newExecRunner(nil).Run(context.Background(), Command{Name: "qt-no-such-decoder"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDecoderUnavailable)
}

func TestExecRunner_Output(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, err := newExecRunner(nil).Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "printf 'Cimento R$ 32,50'"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Cimento R$ 32,50", string(out.Stdout))
}

func TestExecRunner_ExitError(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, err := newExecRunner(nil).Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo 'Incorrect password' >&2; exit 3"},
	})
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "Incorrect password", exitErr.Stderr)
	assert.Equal(t, "sh exited with status 3: Incorrect password", exitErr.Error())
	assert.Equal(t, "Incorrect password", strings.TrimSpace(string(out.Stderr)))
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "pdftotext -layout x.pdf -", Command{Name: "pdftotext", Args: []string{"-layout", "x.pdf", "-"}}.String())
	assert.Equal(t, "pdftotext", Command{Name: "pdftotext"}.String())
}
