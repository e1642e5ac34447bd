// Package mapper converts slices between persistence rows and domain
// entities.
package mapper

// MapSlice applies fn to every item. The result is never nil so list
// endpoints encode an empty JSON array.
func MapSlice[T any, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

// MapSliceRef is MapSlice for value slices of large rows: fn receives a
// pointer into items instead of a copy.
func MapSliceRef[T any, R any](items []T, fn func(*T) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}
