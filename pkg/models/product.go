package models

// ProductID is a positive key into the shop catalog.
type ProductID int64

func (id ProductID) Valid() bool {
	return id > 0
}

// Relationship is one stored row of the link table. The pair is unordered when read.
type Relationship struct {
	ProductID1 ProductID `db:"id_product1" json:"id_product1"`
	ProductID2 ProductID `db:"id_product2" json:"id_product2"`
}

// ResolutionMode selects which strategy answers a related products request.
type ResolutionMode string

const (
	ModeExplicit ResolutionMode = "explicit"
	ModeRules    ResolutionMode = "rules"
)

func (m ResolutionMode) Valid() bool {
	return m == ModeExplicit || m == ModeRules
}

// AssembledProduct is the catalog row a candidate id expands to before presentation.
type AssembledProduct struct {
	ID                ProductID `db:"id_product"`
	Reference         string    `db:"reference"`
	Name              string    `db:"name"`
	LinkRewrite       string    `db:"link_rewrite"`
	Price             float64   `db:"price"`
	Active            bool      `db:"active"`
	DefaultCategoryID int64     `db:"id_category_default"`
}

// ProductPresentation is the template-ready form of a related product.
type ProductPresentation struct {
	ID        ProductID `json:"id_product"`
	Name      string    `json:"name"`
	Reference string    `json:"reference,omitempty"`
	URL       string    `json:"url"`
	Price     string    `json:"price,omitempty"`
	ShowPrice bool      `json:"show_price"`
}

// RelatedProductsResponse is returned by the related products endpoint. Exactly one of ProductIDs
// and Products is populated, depending on Mode.
type RelatedProductsResponse struct {
	ProductID  ProductID             `json:"id_product"`
	Mode       ResolutionMode        `json:"mode"`
	ProductIDs []ProductID           `json:"product_ids,omitempty"`
	Products   []ProductPresentation `json:"products,omitempty"`
}

type SetRelatedProductsRequest struct {
	RelatedIDs []ProductID `json:"related_ids" validate:"dive,gt=0"`
}
