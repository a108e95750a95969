package repository

// Direcciones de ordenamiento admitidas.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Page paginación y ordenamiento para listados. Los repositorios validan SortBy
// contra una lista blanca de columnas; un valor desconocido cae al orden por defecto.
type Page struct {
	Number  int // 1-based
	Size    int
	SortBy  string
	SortDir string
}

// Normalize aplica valores por defecto y acota el tamaño de página.
func (p *Page) Normalize() {
	if p.Number <= 0 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = 20
	}
	if p.Size > 100 {
		p.Size = 100
	}
	if p.SortDir != SortAsc && p.SortDir != SortDesc {
		p.SortDir = SortDesc
	}
}

// Offset devuelve el desplazamiento SQL equivalente.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}
