package logisticsclient

import (
	"context"
	"net/http"
	"net/url"
	"sort"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
)

// Tag types
const (
	TagProduct             = "Product"
	TagCategory            = "Category"
	TagFacility            = "Facility"
	TagSupplier            = "Supplier"
	TagCustomer            = "Customer"
	TagOrder               = "Order"
	TagOrderItem           = "OrderItem"
	TagShipment            = "Shipment"
	TagInventoryItem       = "InventoryItem"
	TagInventoryItemDetail = "InventoryItemDetail"
	TagAddress             = "Address"
)

// Page is the data of a search response
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
}

// Deleted is the data of a delete response
type Deleted struct {
	ID uuid.UUID `json:"id"`
}

// entity is satisfied by pointers to the logistics records
type entity[T any] interface {
	*T
	GetID() uuid.UUID
}

type updateArgs struct {
	ID   uuid.UUID
	Body any
}

// Resource is the search/get/create/update/delete surface of one logistics
// resource. Writes also evict every cached result of the related tag types.
type Resource[T any, PT entity[T]] struct {
	client  *Client
	name    string
	tagType string

	search QueryEndpoint[url.Values, Page[T]]
	get    QueryEndpoint[uuid.UUID, T]
	create MutationEndpoint[any, T]
	update MutationEndpoint[updateArgs, T]
	remove MutationEndpoint[uuid.UUID, Deleted]
}

// NewResource declares the endpoints of resource name, tagging results with
// tagType
func NewResource[T any, PT entity[T]](c *Client, name, tagType string, related ...string) *Resource[T, PT] {
	base := "/" + name
	stale := func(ids ...uuid.UUID) []cache.Tag {
		tags := []cache.Tag{cache.ListTag(tagType)}
		for _, id := range ids {
			tags = append(tags, cache.IDTag(tagType, id.String()))
		}
		for _, r := range related {
			tags = append(tags, cache.TypeTag(r))
		}
		return tags
	}

	return &Resource[T, PT]{
		client:  c,
		name:    name,
		tagType: tagType,
		search: QueryEndpoint[url.Values, Page[T]]{
			Name: name + ".search",
			Path: func(params url.Values) string {
				if len(params) == 0 {
					return base + "/search"
				}
				return base + "/search?" + params.Encode()
			},
			Provides: func(page Page[T], _ url.Values) []cache.Tag {
				tags := []cache.Tag{cache.ListTag(tagType)}
				for i := range page.Items {
					tags = append(tags, cache.IDTag(tagType, PT(&page.Items[i]).GetID().String()))
				}
				return tags
			},
		},
		get: QueryEndpoint[uuid.UUID, T]{
			Name: name + ".get",
			Path: func(id uuid.UUID) string { return base + "/search/" + id.String() },
			Provides: func(_ T, id uuid.UUID) []cache.Tag {
				return []cache.Tag{cache.IDTag(tagType, id.String())}
			},
		},
		create: MutationEndpoint[any, T]{
			Name: name + ".create",
			Path: func(any) string { return base + "/create" },
			Body: func(body any) any { return body },
			Invalidates: func(T, any) []cache.Tag {
				return stale()
			},
		},
		update: MutationEndpoint[updateArgs, T]{
			Name:   name + ".update",
			Method: http.MethodPatch,
			Path:   func(a updateArgs) string { return base + "/update/" + a.ID.String() },
			Body:   func(a updateArgs) any { return a.Body },
			Invalidates: func(_ T, a updateArgs) []cache.Tag {
				return stale(a.ID)
			},
		},
		remove: MutationEndpoint[uuid.UUID, Deleted]{
			Name:   name + ".delete",
			Method: http.MethodDelete,
			Path:   func(id uuid.UUID) string { return base + "/delete/" + id.String() },
			Invalidates: func(_ Deleted, id uuid.UUID) []cache.Tag {
				return stale(id)
			},
		},
	}
}

// Name returns the resource path segment
func (r *Resource[T, PT]) Name() string { return r.name }

// Search lists records; params carry page, limit, sortBy, sortOrder, search
// and field filters
func (r *Resource[T, PT]) Search(ctx context.Context, params url.Values) (Page[T], error) {
	return Query(ctx, r.client, r.search, params)
}

// Get fetches one record
func (r *Resource[T, PT]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	return Query(ctx, r.client, r.get, id)
}

// Create posts a new record
func (r *Resource[T, PT]) Create(ctx context.Context, body any) (T, error) {
	return Mutate(ctx, r.client, r.create, body)
}

// Update patches a record
func (r *Resource[T, PT]) Update(ctx context.Context, id uuid.UUID, body any) (T, error) {
	return Mutate(ctx, r.client, r.update, updateArgs{ID: id, Body: body})
}

// Delete removes a record
func (r *Resource[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := Mutate(ctx, r.client, r.remove, id)
	return err
}

// SearchAny implements Browser
func (r *Resource[T, PT]) SearchAny(ctx context.Context, params url.Values) (any, error) {
	return r.Search(ctx, params)
}

// GetAny implements Browser
func (r *Resource[T, PT]) GetAny(ctx context.Context, id uuid.UUID) (any, error) {
	return r.Get(ctx, id)
}

// Browser is the untyped surface of a resource, for tooling
type Browser interface {
	Name() string
	SearchAny(ctx context.Context, params url.Values) (any, error)
	GetAny(ctx context.Context, id uuid.UUID) (any, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderItemArgs struct {
	OrderID uuid.UUID
	ItemID  uuid.UUID
	Body    any
}

// OrderResource adds the order line endpoints
type OrderResource struct {
	*Resource[logistics.Order, *logistics.Order]

	items      QueryEndpoint[uuid.UUID, []logistics.OrderItem]
	addItem    MutationEndpoint[orderItemArgs, logistics.Order]
	updateItem MutationEndpoint[orderItemArgs, logistics.Order]
	removeItem MutationEndpoint[orderItemArgs, logistics.Order]
}

func newOrderResource(c *Client) *OrderResource {
	name := logistics.ResourceOrders
	linePath := func(a orderItemArgs) string {
		return "/" + name + "/" + a.OrderID.String() + "/items/" + a.ItemID.String()
	}
	stale := func(_ logistics.Order, a orderItemArgs) []cache.Tag {
		return []cache.Tag{
			cache.ListTag(TagOrder),
			cache.IDTag(TagOrder, a.OrderID.String()),
		}
	}
	return &OrderResource{
		Resource: NewResource[logistics.Order](c, name, TagOrder),
		items: QueryEndpoint[uuid.UUID, []logistics.OrderItem]{
			Name: name + ".items",
			Path: func(id uuid.UUID) string { return "/" + name + "/search/" + id.String() + "/items" },
			Provides: func(_ []logistics.OrderItem, id uuid.UUID) []cache.Tag {
				return []cache.Tag{cache.IDTag(TagOrder, id.String()), cache.ListTag(TagOrderItem)}
			},
		},
		addItem: MutationEndpoint[orderItemArgs, logistics.Order]{
			Name:        name + ".addItem",
			Path:        func(a orderItemArgs) string { return "/" + name + "/" + a.OrderID.String() + "/items" },
			Body:        func(a orderItemArgs) any { return a.Body },
			Invalidates: stale,
		},
		updateItem: MutationEndpoint[orderItemArgs, logistics.Order]{
			Name:        name + ".updateItem",
			Method:      http.MethodPatch,
			Path:        linePath,
			Body:        func(a orderItemArgs) any { return a.Body },
			Invalidates: stale,
		},
		removeItem: MutationEndpoint[orderItemArgs, logistics.Order]{
			Name:        name + ".removeItem",
			Method:      http.MethodDelete,
			Path:        linePath,
			Invalidates: stale,
		},
	}
}

// Items lists the lines of an order
func (r *OrderResource) Items(ctx context.Context, orderID uuid.UUID) ([]logistics.OrderItem, error) {
	return Query(ctx, r.client, r.items, orderID)
}

// AddItem appends a line and returns the recalculated order
func (r *OrderResource) AddItem(ctx context.Context, orderID uuid.UUID, body any) (logistics.Order, error) {
	return Mutate(ctx, r.client, r.addItem, orderItemArgs{OrderID: orderID, Body: body})
}

// UpdateItem changes a line
func (r *OrderResource) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, body any) (logistics.Order, error) {
	return Mutate(ctx, r.client, r.updateItem, orderItemArgs{OrderID: orderID, ItemID: itemID, Body: body})
}

// RemoveItem drops a line
func (r *OrderResource) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (logistics.Order, error) {
	return Mutate(ctx, r.client, r.removeItem, orderItemArgs{OrderID: orderID, ItemID: itemID})
}

// InventoryItemResource adds the low-stock report
type InventoryItemResource struct {
	*Resource[logistics.InventoryItem, *logistics.InventoryItem]
	lowStock QueryEndpoint[url.Values, Page[logistics.InventoryItem]]
}

func newInventoryItemResource(c *Client) *InventoryItemResource {
	name := logistics.ResourceInventoryItems
	return &InventoryItemResource{
		Resource: NewResource[logistics.InventoryItem](c, name, TagInventoryItem),
		lowStock: QueryEndpoint[url.Values, Page[logistics.InventoryItem]]{
			Name: name + ".lowStock",
			Path: func(params url.Values) string {
				if len(params) == 0 {
					return "/" + name + "/low-stock"
				}
				return "/" + name + "/low-stock?" + params.Encode()
			},
			Provides: func(Page[logistics.InventoryItem], url.Values) []cache.Tag {
				// stock moves through item and detail writes alike
				return []cache.Tag{cache.ListTag(TagInventoryItem), cache.ListTag(TagInventoryItemDetail)}
			},
		},
	}
}

// LowStock lists items at or below their reorder level
func (r *InventoryItemResource) LowStock(ctx context.Context, params url.Values) (Page[logistics.InventoryItem], error) {
	return Query(ctx, r.client, r.lowStock, params)
}

// Logistics bundles every resource of the API
type Logistics struct {
	Products             *Resource[logistics.Product, *logistics.Product]
	Categories           *Resource[logistics.Category, *logistics.Category]
	Facilities           *Resource[logistics.Facility, *logistics.Facility]
	Suppliers            *Resource[logistics.Supplier, *logistics.Supplier]
	Customers            *Resource[logistics.Customer, *logistics.Customer]
	Orders               *OrderResource
	Shipments            *Resource[logistics.Shipment, *logistics.Shipment]
	InventoryItems       *InventoryItemResource
	InventoryItemDetails *Resource[logistics.InventoryItemDetail, *logistics.InventoryItemDetail]
	Addresses            *Resource[logistics.Address, *logistics.Address]

	browsers map[string]Browser
}

// NewLogistics declares every resource on c
func NewLogistics(c *Client) *Logistics {
	l := &Logistics{
		Products:       NewResource[logistics.Product](c, logistics.ResourceProducts, TagProduct),
		Categories:     NewResource[logistics.Category](c, logistics.ResourceCategories, TagCategory),
		Facilities:     NewResource[logistics.Facility](c, logistics.ResourceFacilities, TagFacility),
		Suppliers:      NewResource[logistics.Supplier](c, logistics.ResourceSuppliers, TagSupplier),
		Customers:      NewResource[logistics.Customer](c, logistics.ResourceCustomers, TagCustomer),
		Orders:         newOrderResource(c),
		Shipments:      NewResource[logistics.Shipment](c, logistics.ResourceShipments, TagShipment, TagOrder),
		InventoryItems: newInventoryItemResource(c),
		InventoryItemDetails: NewResource[logistics.InventoryItemDetail](c, logistics.ResourceInventoryItemDetails,
			TagInventoryItemDetail, TagInventoryItem),
		Addresses: NewResource[logistics.Address](c, logistics.ResourceAddresses, TagAddress),
	}
	l.browsers = map[string]Browser{}
	for _, b := range []Browser{
		l.Products, l.Categories, l.Facilities, l.Suppliers, l.Customers,
		l.Orders, l.Shipments, l.InventoryItems, l.InventoryItemDetails, l.Addresses,
	} {
		l.browsers[b.Name()] = b
	}
	return l
}

// Browser looks a resource up by its path segment
func (l *Logistics) Browser(name string) (Browser, bool) {
	b, ok := l.browsers[name]
	return b, ok
}

// ResourceNames lists the browsable resources in sorted order
func (l *Logistics) ResourceNames() []string {
	names := make([]string, 0, len(l.browsers))
	for name := range l.browsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
