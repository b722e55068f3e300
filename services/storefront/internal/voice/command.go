package voice

import (
	"strings"

	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
)

// Kind identifies a command family of the voice grammar.
type Kind string

const (
	KindAdd           Kind = "add"
	KindShowHelp      Kind = "show_help"
	KindHideHelp      Kind = "hide_help"
	KindClearFeedback Kind = "clear_feedback"
)

// Command is a parsed utterance. Phrase is set for KindAdd only.
type Command struct {
	Kind   Kind
	Phrase string
}

// addVerbs all mean "add to cart".
var addVerbs = []string{"add", "order", "buy"}

// Parse matches an utterance against the grammar after lower-casing and
// trimming it:
//
//	add|order|buy <phrase>
//	show help
//	hide help
//	clear feedback
//
// Anything else is not a command.
func Parse(utterance string) (Command, bool) {
	text := strings.Join(strings.Fields(strings.ToLower(utterance)), " ")

	switch text {
	case "show help":
		return Command{Kind: KindShowHelp}, true
	case "hide help":
		return Command{Kind: KindHideHelp}, true
	case "clear feedback":
		return Command{Kind: KindClearFeedback}, true
	}

	verb, phrase, ok := strings.Cut(text, " ")
	if !ok || phrase == "" {
		return Command{}, false
	}
	for _, v := range addVerbs {
		if verb == v {
			return Command{Kind: KindAdd, Phrase: phrase}, true
		}
	}
	return Command{}, false
}

// Resolve returns the first product whose lower-cased title contains the
// lower-cased phrase. There is no scoring: catalog order decides.
func Resolve(products []domain.Product, phrase string) (domain.Product, bool) {
	needle := strings.ToLower(phrase)
	if needle == "" {
		return domain.Product{}, false
	}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			return p, true
		}
	}
	return domain.Product{}, false
}

// HelpLines are the entries of the voice help panel.
var HelpLines = []string{
	`"add [product]" - Add item to cart`,
	`"order [product]" - Add item to cart`,
	`"buy [product]" - Add item to cart`,
	`"show help" - Show this help`,
	`"hide help" - Hide this help`,
}
