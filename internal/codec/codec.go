// Package codec is the JSON codec shared by the transport and the models.
//
// Decoding is lenient: unknown fields are ignored, and pointer fields whose
// element type was registered with EmptyAsNull decode "" as nil.
package codec

import (
	"reflect"
	"sync"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
	"github.com/modern-go/reflect2"
)

var (
	nullableMu sync.RWMutex
	nullable   = map[reflect.Type]struct{}{}

	api = newAPI()
)

func newAPI() jsoniter.API {
	a := jsoniter.Config{
		EscapeHTML:             true,
		ValidateJsonRawMessage: true,
	}.Froze()
	a.RegisterExtension(&emptyAsNullExtension{})
	return a
}

// EmptyAsNull registers a string-kind type whose empty value means "absent".
// A *T field decodes "" as nil. Register types before the first decode of any
// struct that contains them; decoders are cached per type.
func EmptyAsNull[T ~string]() {
	nullableMu.Lock()
	defer nullableMu.Unlock()
	nullable[reflect.TypeFor[T]()] = struct{}{}
}

func isNullable(t reflect.Type) bool {
	nullableMu.RLock()
	defer nullableMu.RUnlock()
	_, ok := nullable[t]
	return ok
}

// Marshal encodes v as JSON.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent encodes v as indented JSON.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

type emptyAsNullExtension struct {
	jsoniter.DummyExtension
}

func (e *emptyAsNullExtension) CreateDecoder(typ reflect2.Type) jsoniter.ValDecoder {
	t := typ.Type1()
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.String || !isNullable(t.Elem()) {
		return nil
	}
	return &emptyAsNullDecoder{ptrType: t}
}

// emptyAsNullDecoder decodes into a *T slot, leaving it nil for null and "".
type emptyAsNullDecoder struct {
	ptrType reflect.Type
}

func (d *emptyAsNullDecoder) Decode(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	slot := reflect.NewAt(d.ptrType, ptr).Elem()
	if iter.ReadNil() {
		slot.SetZero()
		return
	}

	s := iter.ReadString()
	if iter.Error != nil || s == "" {
		slot.SetZero()
		return
	}

	v := reflect.New(d.ptrType.Elem())
	v.Elem().SetString(s)
	slot.Set(v)
}
