// Package resolve maps free-text product references onto catalog entries.
// Chat messages rarely match catalog casing exactly, so matching is
// case-insensitive substring containment: the given name must appear inside a
// catalog entry's name. Zero and multiple matches are surfaced explicitly;
// the resolver never guesses among candidates.
package resolve

import (
	"fmt"
	"strings"

	"github.com/smartkas-app/kasai/internal/ledger"
)

// NotFoundError reports a product name with no catalog match.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", e.Name)
}

// AmbiguousError reports a product name matching more than one catalog entry.
type AmbiguousError struct {
	Name       string
	Candidates []ledger.Product
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, p := range e.Candidates {
		names[i] = p.Name
	}
	return fmt.Sprintf("product %q is ambiguous: matches %s", e.Name, strings.Join(names, ", "))
}

// Product resolves name against the snapshot catalog. Exactly one match is
// returned; zero matches yield NotFoundError and multiple matches yield
// AmbiguousError with the full candidate list.
func Product(name string, catalog []ledger.Product) (ledger.Product, error) {
	query := strings.ToLower(strings.TrimSpace(name))

	var matches []ledger.Product
	for _, p := range catalog {
		if strings.Contains(strings.ToLower(p.Name), query) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return ledger.Product{}, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return ledger.Product{}, &AmbiguousError{Name: name, Candidates: matches}
	}
}
