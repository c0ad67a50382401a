// Package resource shapes the JSON the dashboard API returns.
//
// A Resource controls exactly which fields of a model leave the process:
//
//	type ReservationResource struct{ resource.Base }
//	func (r *ReservationResource) ToArray(v interface{}) resource.Map {
//	    res := v.(models.Reservation)
//	    return resource.Map{
//	        "id":     res.ID,
//	        "name":   res.Name,
//	        "guests": res.Guests,
//	    }
//	}
//
// Respond:
//
//	resource.New(&ReservationResource{}, res).Respond(w)
//	resource.CollectionOf(&ReservationResource{}, list).Respond(w)
package resource

import (
	"encoding/json"
	"net/http"
	"reflect"
)

// Map is the output shape of ToArray.
type Map = map[string]interface{}

// Transformer converts one model instance into a Map.
type Transformer interface {
	ToArray(v interface{}) Map
}

// Base can be embedded in any Resource to satisfy future extension points.
type Base struct{}

// ------------------- Single resource -------------------

// Resource wraps a single model with its transformer.
type Resource struct {
	transformer Transformer
	data        interface{}
	meta        Map
}

// New creates a Resource for a single model instance.
func New(t Transformer, data interface{}) *Resource {
	return &Resource{transformer: t, data: data}
}

// WithMeta attaches additional metadata to the response envelope.
func (r *Resource) WithMeta(meta Map) *Resource {
	r.meta = meta
	return r
}

// MarshalJSON implements json.Marshaler so Resource can be nested.
func (r *Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.transformer.ToArray(r.data))
}

// Respond writes the resource as JSON with status 200.
func (r *Resource) Respond(w http.ResponseWriter) {
	out := Map{"data": r.transformer.ToArray(r.data)}
	if r.meta != nil {
		out["meta"] = r.meta
	}
	writeJSON(w, http.StatusOK, out)
}

// ------------------- Collection resource -------------------

// Collection wraps a slice of models with a transformer.
type Collection struct {
	transformer Transformer
	items       interface{}
	meta        Map
}

// CollectionOf creates a Collection from a slice. items must be a []SomeModel;
// each element is handed to the transformer as-is.
func CollectionOf(t Transformer, items interface{}) *Collection {
	return &Collection{transformer: t, items: items}
}

// WithMeta attaches extra metadata.
func (c *Collection) WithMeta(meta Map) *Collection {
	c.meta = meta
	return c
}

// Respond writes the collection as JSON with status 200. A nil or empty
// slice serialises as an empty array, never null.
func (c *Collection) Respond(w http.ResponseWriter) {
	result := make([]Map, 0)

	rv := reflect.ValueOf(c.items)
	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			result = append(result, c.transformer.ToArray(rv.Index(i).Interface()))
		}
	}

	out := Map{"data": result}
	if c.meta != nil {
		out["meta"] = c.meta
	}
	writeJSON(w, http.StatusOK, out)
}

// ------------------- Helpers -------------------

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
