package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_JSONArchive(t *testing.T) {
	v := NewUploadValidator(1024)

	format, err := v.Validate([]byte(`{"collections":{}}`), "backup.json", "application/json")
	require.NoError(t, err)
	assert.Equal(t, "JSON", format)
}

func TestValidate_CSVDump(t *testing.T) {
	v := NewUploadValidator(1024)

	format, err := v.Validate([]byte("id,title\n1,Gala\n"), "incomes.csv", "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "CSV", format)
}

func TestValidate_RejectsPathTraversal(t *testing.T) {
	v := NewUploadValidator(1024)

	_, err := v.Validate([]byte("{}"), "../../etc/backup.json", "application/json")
	assert.ErrorContains(t, err, "path traversal")
}

func TestValidate_RejectsUnknownExtension(t *testing.T) {
	v := NewUploadValidator(1024)

	_, err := v.Validate([]byte("{}"), "backup.exe", "application/json")
	assert.ErrorContains(t, err, "unsupported file extension")
}

func TestValidate_RejectsOversizedFile(t *testing.T) {
	v := NewUploadValidator(8)

	_, err := v.Validate([]byte(`{"collections":{}}`), "backup.json", "application/json")
	assert.ErrorContains(t, err, "exceeds maximum")
}

func TestValidate_RejectsEmptyFile(t *testing.T) {
	v := NewUploadValidator(1024)

	_, err := v.Validate(nil, "backup.json", "application/json")
	assert.ErrorContains(t, err, "empty file")
}

func TestValidate_RejectsExtensionContentMismatch(t *testing.T) {
	v := NewUploadValidator(1024)

	_, err := v.Validate([]byte(`{"collections":{}}`), "backup.csv", "text/csv")
	assert.ErrorContains(t, err, "does not match")
}

func TestValidate_RejectsBinaryContent(t *testing.T) {
	v := NewUploadValidator(1024)

	payload := []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00, 0x00, 0x00, 0x01, 0x02}
	_, err := v.Validate(payload, "incomes.csv", "text/csv")
	assert.ErrorContains(t, err, "unsupported file type")
}
