// Package translate wraps the external machine-translation engine behind
// a narrow per-entry contract.
package translate

import "context"

// Translator converts one caption's text between languages. Calls are
// idempotent and must preserve line breaks within the text.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}
