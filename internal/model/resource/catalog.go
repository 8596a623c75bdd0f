package resource

// Catalog is the immutable, process-wide copy of the resource list. It is
// constructed once at start-up and shared by reference; entries are addressed
// by ordinal position during model-assisted matching.
type Catalog struct {
	items []Resource
}

// NewCatalog returns a Catalog holding a private copy of the supplied items.
func NewCatalog(items []Resource) *Catalog {
	return &Catalog{items: append([]Resource(nil), items...)}
}

// List returns a copy of the catalog entries in ordinal order.
func (c *Catalog) List() []Resource {
	return append([]Resource(nil), c.items...)
}

// ByIndex resolves an ordinal position to a resource. Out-of-range indexes
// report false rather than panicking; model output is never trusted blindly.
func (c *Catalog) ByIndex(i int) (Resource, bool) {
	if i < 0 || i >= len(c.items) {
		return Resource{}, false
	}
	return c.items[i], true
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.items)
}
