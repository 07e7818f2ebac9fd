package logistics

import "github.com/bizconsole/backend/internal/domain/shared/query"

// Field implementations let logistics entities run through the in-memory
// query engine and the CSV exporter.

func (c Category) Field(name string) (any, bool)            { return query.StructField(c, name) }
func (p Product) Field(name string) (any, bool)             { return query.StructField(p, name) }
func (a Address) Field(name string) (any, bool)             { return query.StructField(a, name) }
func (s Supplier) Field(name string) (any, bool)            { return query.StructField(s, name) }
func (c Customer) Field(name string) (any, bool)            { return query.StructField(c, name) }
func (f Facility) Field(name string) (any, bool)            { return query.StructField(f, name) }
func (o Order) Field(name string) (any, bool)               { return query.StructField(o, name) }
func (i OrderItem) Field(name string) (any, bool)           { return query.StructField(i, name) }
func (s Shipment) Field(name string) (any, bool)            { return query.StructField(s, name) }
func (d InventoryItemDetail) Field(name string) (any, bool) { return query.StructField(d, name) }

// Field exposes the derived available quantity next to the stored columns
func (i InventoryItem) Field(name string) (any, bool) {
	if name == "available" {
		return i.Available(), true
	}
	return query.StructField(i, name)
}
