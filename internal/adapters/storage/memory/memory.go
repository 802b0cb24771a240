// Package memory implementa los repositorios en memoria. Se usan en dev cuando no hay
// DB_DSN y en los tests end-to-end del router.
package memory

const defaultLimit = 20

// page recorta items según limit/offset y devuelve el total previo al corte.
func page[T any](items []T, limit, offset int) ([]T, int) {
	total := len(items)
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []T{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out, total
}
