package savedata

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/soundtrack/soundtrack"
)

var _ soundtrack.SaveData = (*Data)(nil)

// Data is a flat string-keyed save container. Ints are stored in decimal
// form; an absent or non-numeric value reads as 0.
type Data struct {
	values map[string]string
}

func New() *Data {
	return &Data{values: map[string]string{}}
}

// FromMap copies m into a new Data.
func FromMap(m map[string]string) *Data {
	d := New()
	maps.Copy(d.values, m)
	return d
}

func (d *Data) SetInt(key string, v int) {
	d.SetString(key, strconv.Itoa(v))
}

func (d *Data) Int(key string) int {
	n, err := strconv.Atoi(d.String(key))
	if err != nil {
		return 0
	}
	return n
}

func (d *Data) SetString(key, v string) {
	if d.values == nil {
		d.values = map[string]string{}
	}
	d.values[key] = v
}

func (d *Data) String(key string) string {
	if d == nil {
		return ""
	}
	return d.values[key]
}

func (d *Data) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.values[key]
	return ok
}

// Keys returns the stored keys in sorted order.
func (d *Data) Keys() []string {
	if d == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(d.values))
}

func (d *Data) Len() int {
	if d == nil {
		return 0
	}
	return len(d.values)
}

// Map returns a copy of the stored values.
func (d *Data) Map() map[string]string {
	out := make(map[string]string, d.Len())
	if d != nil {
		maps.Copy(out, d.values)
	}
	return out
}

func (d *Data) Clone() *Data {
	return FromMap(d.Map())
}

// Marshal encodes d as a yaml mapping.
func Marshal(d *Data) ([]byte, error) {
	out, err := yaml.Marshal(d.Map())
	if err != nil {
		return nil, fmt.Errorf("savedata: marshal: %w", err)
	}
	return out, nil
}

// Unmarshal decodes a Marshal document. Scalar values of any yaml type are
// kept in their string form.
func Unmarshal(b []byte) (*Data, error) {
	values := map[string]string{}
	if err := yaml.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("savedata: unmarshal: %w", err)
	}
	return FromMap(values), nil
}
