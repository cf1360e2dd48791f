package transform

import (
	"fmt"
	"reflect"
	"strings"
)

// ApplyConfig reflects over cfg (a struct value, struct pointer, or
// map[string]any) and calls SetParameter/SetParameterList for every
// non-null field, naming each parameter prefix+lowercase(fieldName)
// (spec.md §4.7's "auxiliary utility reflects over an input configuration
// object or map"). []string-valued fields become list parameters; every
// other kind is formatted with fmt.Sprint and set as a scalar. Zero-value
// fields are skipped (the "non-null attribute" rule).
func (p *ParameterSet) ApplyConfig(prefix string, cfg any) {
	v := reflect.ValueOf(cfg)
	if !v.IsValid() {
		return
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		p.applyConfigMap(prefix, v)
	case reflect.Struct:
		p.applyConfigStruct(prefix, v)
	}
}

func (p *ParameterSet) applyConfigMap(prefix string, v reflect.Value) {
	iter := v.MapRange()
	for iter.Next() {
		key := fmt.Sprint(iter.Key().Interface())
		p.applyConfigValue(prefix+strings.ToLower(key), iter.Value())
	}
}

func (p *ParameterSet) applyConfigStruct(prefix string, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		p.applyConfigValue(prefix+strings.ToLower(field.Name), v.Field(i))
	}
}

func (p *ParameterSet) applyConfigValue(name string, fv reflect.Value) {
	for fv.Kind() == reflect.Interface {
		fv = fv.Elem()
	}
	if !fv.IsValid() || fv.IsZero() {
		return
	}

	if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String {
		values := make([]string, fv.Len())
		for i := range values {
			values[i] = fv.Index(i).String()
		}
		p.SetParameterList(name, values)
		return
	}

	p.SetParameter(name, fmt.Sprint(fv.Interface()))
}
