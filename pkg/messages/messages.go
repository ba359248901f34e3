// Package messages holds the operator-facing log messages and their translations.
package messages

import (
	"context"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appctx "github.com/Ramsey-B/clover/pkg/context"
)

// Product ids are passed pre-formatted as strings so the printer does not group their digits.
const (
	SetRelatedFailed      = "Unable to set related products. Get error \"%s\""
	RelationshipRemoved   = "Deleted relationship with Product ID:%s"
	RelationshipNotRemove = "Unable to remove products %s relationship. Get error \"%s\""
	ReplaceRelatedFailed  = "Unable to replace related products of product %s. Get error \"%s\""
	RelatedProductsSet    = "Set %s related products for Product ID:%s"
)

var translations = map[language.Tag]map[string]string{
	language.French: {
		SetRelatedFailed:      "Impossible de définir les produits associés. Erreur \"%s\"",
		RelationshipRemoved:   "Relation supprimée avec le produit ID :%s",
		RelationshipNotRemove: "Impossible de supprimer les relations du produit %s. Erreur \"%s\"",
		ReplaceRelatedFailed:  "Impossible de remplacer les produits associés du produit %s. Erreur \"%s\"",
		RelatedProductsSet:    "%s produits associés définis pour le produit ID :%s",
	},
}

var supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(supported)

func init() {
	for tag, entries := range translations {
		for key, msg := range entries {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

// Tag returns the supported language closest to locale, falling back to English.
func Tag(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	desired, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(desired) == 0 {
		return language.English
	}
	_, index, _ := matcher.Match(desired...)
	return supported[index]
}

// Sprintf localizes key for the locale carried by ctx.
func Sprintf(ctx context.Context, key string, args ...any) string {
	return message.NewPrinter(Tag(appctx.GetLocale(ctx))).Sprintf(key, args...)
}
