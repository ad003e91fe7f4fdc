// Package detector identifies the source language of a document so the
// translation prompt can name it when the user passes --source auto.
package detector

import (
	lingua "github.com/pemistahl/lingua-go"
)

// sampleLimit caps how much of a document is fed to the detector.
// Language identification converges long before this; whole documents
// only slow it down.
const sampleLimit = 4096

// Detector wraps a lingua language detector. Building one is expensive;
// construct once and reuse.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

// Detect identifies the language of text, sampling only its head.
func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	runes := []rune(text)
	if len(runes) > sampleLimit {
		text = string(runes[:sampleLimit])
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}
