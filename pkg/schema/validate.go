package schema

import "sort"

// Schema is a map of field names to their expected types.
type Schema map[string]Type

// Keys returns the field names in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks if data conforms to the schema. Fields absent from the schema
// are reported as unknown. Errors are ordered by field name.
func Validate(schema Schema, data map[string]any) error {
	var errs []error

	for _, fieldName := range schema.Keys() {
		fieldType := schema[fieldName]
		value, exists := data[fieldName]
		if !exists {
			if isOptional(fieldType) {
				continue
			}
			errs = append(errs, &ValidationError{Key: fieldName, Reason: "required"})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	unknown := make([]string, 0)
	for key := range data {
		if _, ok := schema[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		errs = append(errs, &ValidationError{Key: key, Reason: "unknown field", Value: data[key]})
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Prefix rewrites the keys of every ValidationError in err to "prefix.key".
func Prefix(prefix string, err error) []error {
	if err == nil {
		return nil
	}
	errs := ValidationErrors(err)
	if errs == nil {
		return []error{&ValidationError{Key: prefix, Reason: err.Error()}}
	}
	out := make([]error, 0, len(errs))
	for _, e := range errs {
		if ve, ok := e.(*ValidationError); ok {
			cp := *ve
			cp.Key = prefix + "." + ve.Key
			out = append(out, &cp)
			continue
		}
		out = append(out, e)
	}
	return out
}
