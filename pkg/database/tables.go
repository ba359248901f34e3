package database

// Tables resolves table names against the shop's table prefix.
type Tables struct {
	Prefix string
}

func NewTables(prefix string) Tables {
	return Tables{Prefix: prefix}
}

func (t Tables) Relationships() string   { return t.Prefix + "jb_relprod_relationships" }
func (t Tables) Log() string             { return t.Prefix + "jb_relprod_log" }
func (t Tables) Configuration() string   { return t.Prefix + "configuration" }
func (t Tables) Product() string         { return t.Prefix + "product" }
func (t Tables) ProductLang() string     { return t.Prefix + "product_lang" }
func (t Tables) ProductShop() string     { return t.Prefix + "product_shop" }
func (t Tables) CategoryProduct() string { return t.Prefix + "category_product" }
func (t Tables) FeatureProduct() string  { return t.Prefix + "feature_product" }
