// Package presenter turns assembled catalog rows into template-ready product listings.
package presenter

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Ramsey-B/clover/pkg/messages"
	"github.com/Ramsey-B/clover/pkg/models"
)

type Assembler interface {
	Assemble(ctx context.Context, productID models.ProductID) (models.AssembledProduct, error)
}

type Presenter interface {
	Present(settings Settings, product models.AssembledProduct, locale string) models.ProductPresentation
}

// Settings are the shop display options applied to every presented product.
type Settings struct {
	ShowPrices bool
	Currency   string
}

// ListingPresenter renders products the way a category listing shows them.
type ListingPresenter struct {
	linkBase string
}

func NewListingPresenter(linkBase string) *ListingPresenter {
	return &ListingPresenter{linkBase: strings.TrimRight(linkBase, "/")}
}

func (p *ListingPresenter) Present(settings Settings, product models.AssembledProduct, locale string) models.ProductPresentation {
	presentation := models.ProductPresentation{
		ID:        product.ID,
		Name:      product.Name,
		Reference: product.Reference,
		URL:       p.link(product),
		ShowPrice: settings.ShowPrices,
	}
	if settings.ShowPrices {
		presentation.Price = FormatPrice(product.Price, settings.Currency, locale)
	}
	return presentation
}

func (p *ListingPresenter) link(product models.AssembledProduct) string {
	if product.LinkRewrite == "" {
		return fmt.Sprintf("%s/index.php?id_product=%d&controller=product", p.linkBase, product.ID)
	}
	return fmt.Sprintf("%s/%d-%s.html", p.linkBase, product.ID, product.LinkRewrite)
}

// FormatPrice renders amount with the decimals of the currency and the separators of locale. An
// unknown currency code falls back to two decimals without a code.
func FormatPrice(amount float64, currencyCode, locale string) string {
	printer := message.NewPrinter(messages.Tag(locale))

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return printer.Sprint(number.Decimal(amount, number.Scale(2)))
	}

	scale, _ := currency.Standard.Rounding(unit)
	return printer.Sprintf("%v %s", number.Decimal(amount, number.Scale(scale)), unit.String())
}
