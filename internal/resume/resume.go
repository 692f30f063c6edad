// Package resume extracts candidate contact details from plain-text resumes.
package resume

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spigell/interviewer/internal/interview"
)

// MaxFileSize bounds the resume files ParseFile accepts.
const MaxFileSize = 5 << 20

var ErrUnsupported = errors.New("unsupported resume file")

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Name:[ \t]*([A-Z][a-z]+ [A-Z][a-z]+)`),
		regexp.MustCompile(`(?m)^[ \t]*([A-Z][a-z]+ [A-Z][a-z]+)`),
	}
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[\d][\d \t\-().]{8,}\d`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// ParseText builds a profile from resume text. Fields that cannot be found
// stay empty and are collected later.
func ParseText(fileName, text string) interview.CandidateProfile {
	return interview.CandidateProfile{
		ID:             uuid.NewString(),
		Name:           ExtractName(text),
		Email:          ExtractEmail(text),
		Phone:          ExtractPhone(text),
		ResumeText:     text,
		ResumeFileName: fileName,
		CreatedAt:      time.Now().UTC(),
	}
}

// ParseFile reads a UTF-8 text resume from path.
func ParseFile(path string) (interview.CandidateProfile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return interview.CandidateProfile{}, fmt.Errorf("reading resume: %w", err)
	}
	if info.IsDir() {
		return interview.CandidateProfile{}, fmt.Errorf("%w: %s is a directory", ErrUnsupported, path)
	}
	if info.Size() > MaxFileSize {
		return interview.CandidateProfile{}, fmt.Errorf("%w: %s is larger than %d bytes", ErrUnsupported, path, MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return interview.CandidateProfile{}, fmt.Errorf("reading resume: %w", err)
	}
	if !utf8.Valid(data) {
		return interview.CandidateProfile{}, fmt.Errorf("%w: %s is not a text file", ErrUnsupported, path)
	}

	return ParseText(filepath.Base(path), string(data)), nil
}

func ExtractName(text string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// ExtractPhone returns the digits of the first phone-like run with exactly 10 digits.
func ExtractPhone(text string) string {
	for _, candidate := range phonePattern.FindAllString(text, -1) {
		digits := nonDigits.ReplaceAllString(candidate, "")
		if len(digits) == 10 {
			return digits
		}
	}
	return ""
}

// Preview returns the first lines of the resume for display.
func Preview(text string, lines int) string {
	all := strings.Split(strings.TrimSpace(text), "\n")
	if len(all) > lines {
		all = all[:lines]
	}
	return strings.Join(all, "\n")
}
