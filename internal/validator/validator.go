// Package validator checks that a translated chunk is actually written in
// the target language before the executor accepts it.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/doctran/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt
// language detection. Shorter texts produce unreliable results and are
// accepted without validation.
const minValidationLength = 20

// Validator checks translated chunks against the expected target
// language. The underlying detector is expensive to build; reuse the
// instance across chunks.
type Validator struct {
	det *detector.Detector
}

func New() *Validator {
	return &Validator{det: detector.New()}
}

// IsValid returns true when translatedText appears to be written in
// targetLang.
//
// Empty text always fails. Short texts and texts whose language cannot be
// determined pass without error. When the detected language differs from
// targetLang the returned error names both codes.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	if targetLang == "" {
		return true, nil
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		// Ambiguous language, cannot validate.
		return true, nil
	}

	if !strings.EqualFold(detected, targetLang) {
		return false, fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}

	return true, nil
}
