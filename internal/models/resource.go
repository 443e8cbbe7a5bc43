package models

import "strconv"

// PathProducts is the path segment addressing the products collection.
const PathProducts = "products"

// MIME types of the two resource shapes.
const (
	ContentListType = "application/vnd.warehouse.dir+json; resource=" + PathProducts
	ContentItemType = "application/vnd.warehouse.item+json; resource=" + PathProducts
)

// ResourceKind tells a collection resource from an item resource.
type ResourceKind int

const (
	ResourceCollection ResourceKind = iota + 1
	ResourceItem
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceCollection:
		return "collection"
	case ResourceItem:
		return "item"
	default:
		return "unknown"
	}
}

// Resource is an addressable set of products: the whole collection, or a
// single product identified by ID.
type Resource struct {
	Kind ResourceKind
	ID   int64 // set for ResourceItem only
}

// CollectionResource addresses every product.
func CollectionResource() Resource {
	return Resource{Kind: ResourceCollection}
}

// ItemResource addresses the product with the given id.
func ItemResource(id int64) Resource {
	return Resource{Kind: ResourceItem, ID: id}
}

// String returns the interop form: "products" or "products/<id>".
func (r Resource) String() string {
	if r.Kind == ResourceItem {
		return PathProducts + "/" + strconv.FormatInt(r.ID, 10)
	}
	return PathProducts
}

// ContentType returns the MIME type of data at r.
func (r Resource) ContentType() string {
	if r.Kind == ResourceItem {
		return ContentItemType
	}
	return ContentListType
}
