package resume

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Jane Roe
Senior Frontend Engineer
jane.roe+jobs@example.co.uk | (555) 123-4567

Experience
  Acme Corp, 2019-2024
`

func TestParseText(t *testing.T) {
	p := ParseText("jane.txt", sample)

	assert.Equal(t, "Jane Roe", p.Name)
	assert.Equal(t, "jane.roe+jobs@example.co.uk", p.Email)
	assert.Equal(t, "5551234567", p.Phone)
	assert.Equal(t, "jane.txt", p.ResumeFileName)
	assert.Equal(t, sample, p.ResumeText)
	assert.False(t, p.CreatedAt.IsZero())

	_, err := uuid.Parse(p.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, p.ID, ParseText("jane.txt", sample).ID)
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "labelled", text: "RESUME\nname: John Smith\n", want: "John Smith"},
		{name: "leading line", text: "Curriculum vitae\nMaria Garcia\n", want: "Maria Garcia"},
		{name: "label wins over earlier line", text: "Acme Corp\nName: Li Wei\n", want: "Li Wei"},
		{name: "none", text: "resume of someone\n", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractName(tt.text))
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "call 555-123-4567 now", want: "5551234567"},
		{text: "tel: 555.123.4567", want: "5551234567"},
		{text: "+1 555 123 4567", want: ""},
		{text: "id 12345678901234 or 5551234567", want: "5551234567"},
		{text: "no phone here", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractPhone(tt.text), tt.text)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	p, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cv.txt", p.ResumeFileName)
	assert.Equal(t, "Jane Roe", p.Name)

	binary := filepath.Join(dir, "cv.pdf")
	require.NoError(t, os.WriteFile(binary, []byte{0xff, 0xfe, 0x00, 0x81}, 0o600))
	_, err = ParseFile(binary)
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = ParseFile(dir)
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = ParseFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "Jane Roe\nSenior Frontend Engineer", Preview(sample, 2))
	assert.Equal(t, "one", Preview("one\n", 5))
}
