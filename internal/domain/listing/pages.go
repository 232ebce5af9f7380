package listing

// PageItem — элемент полосы номеров страниц.
// Ellipsis заменяет пропущенный диапазон, Number в этом случае 0.
type PageItem struct {
	Number   int  `json:"number,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// pageWindow — сколько соседних страниц показывается по обе стороны от текущей.
const pageWindow = 2

// PageNumbers строит полосу номеров страниц: первая, последняя и страницы
// в пределах двух от текущей. Пропуски сворачиваются в одно многоточие.
func PageNumbers(current, total int) []PageItem {
	if total < 1 {
		total = 1
	}
	current = clampPage(current, total)

	items := make([]PageItem, 0, 2*pageWindow+5)
	prev := 0
	for p := 1; p <= total; p++ {
		if p != 1 && p != total && (p < current-pageWindow || p > current+pageWindow) {
			continue
		}
		if prev != 0 && p-prev > 1 {
			items = append(items, PageItem{Ellipsis: true})
		}
		items = append(items, PageItem{Number: p, Current: p == current})
		prev = p
	}
	return items
}
