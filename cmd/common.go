/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/valpere/doctran/internal/translator"
)

// buildTranslator constructs the configured translation service. Every
// service is wrapped with output validation so empty or wrong-language
// results fail the chunk instead of polluting the output.
func buildTranslator(name string, cfg translator.Config) (translator.ChunkTranslator, error) {
	var svc translator.ChunkTranslator

	switch name {
	case "openai":
		svc = translator.NewOpenAITranslator(cfg.APIKey, cfg.BaseURL)
	case "ollama":
		svc = translator.NewOllamaTranslator(cfg.BaseURL)
	case "google":
		svc = translator.NewGoogleTranslator()
	default:
		return nil, fmt.Errorf("unknown translation service: %s (use openai, ollama, or google)", name)
	}

	return translator.NewValidated(svc), nil
}
