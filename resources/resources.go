// Package resources maps persisted entities into their external
// representations. Transformers are registered per concrete type at startup;
// unregistered types fall through unchanged.
package resources

import (
	"reflect"

	"github.com/mpurcell/contentapi/repository"
)

// Transformer converts an entity into its client-facing representation.
type Transformer func(v any) any

var registry = map[reflect.Type]Transformer{}

// Register binds a transformer to the concrete type of prototype.
// Pointer prototypes are normalized to their element type.
func Register(prototype any, fn Transformer) {
	registry[baseType(reflect.TypeOf(prototype))] = fn
}

// Resolve returns the registered representation for v, or v unchanged when
// no transformer exists for its type.
func Resolve(v any) any {
	if v == nil {
		return nil
	}
	if fn, ok := registry[baseType(reflect.TypeOf(v))]; ok {
		return fn(v)
	}
	return v
}

// PageResponse renders a page of entities as {data, pagination}.
func PageResponse[T any](page *repository.Page[T]) map[string]any {
	data := make([]any, 0, len(page.Items))
	for i := range page.Items {
		data = append(data, Resolve(&page.Items[i]))
	}
	return map[string]any{
		"data": data,
		"pagination": map[string]any{
			"totalItems":   page.TotalItems,
			"itemsPerPage": page.ItemsPerPage,
			"currentPage":  page.CurrentPage,
			"lastPage":     page.LastPage,
			"nextPageUrl":  page.NextPageURL,
			"prevPageUrl":  page.PrevPageURL,
		},
	}
}

// CollectionResponse renders entities that carry no pagination context;
// pagination is an empty mapping in that case.
func CollectionResponse[T any](items []T) map[string]any {
	data := make([]any, 0, len(items))
	for i := range items {
		data = append(data, Resolve(&items[i]))
	}
	return map[string]any{
		"data":       data,
		"pagination": map[string]any{},
	}
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
