package aggregate

import "strings"

// FilterByPrefix devolve, para cada nome que começa com prefix, o segmento
// de índice segment após separar o nome por "_". Nomes sem esse segmento
// são ignorados. A ordem de entrada é mantida.
func FilterByPrefix(names []string, prefix string, segment int) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		parts := strings.Split(name, "_")
		if segment < 0 || segment >= len(parts) {
			continue
		}
		out = append(out, parts[segment])
	}
	return out
}
