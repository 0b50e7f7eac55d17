package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Unidades de medida de un insumo.
const (
	UnitGrams       = "GRAMS"
	UnitMilliliters = "MILLILITERS"
	UnitUnits       = "UNITS"
)

// Tipos de insumo: base (comprado) o compuesto (ensamblado a partir de bases).
const (
	SupplyKindBase      = "BASE"
	SupplyKindComposite = "COMPOSITE"
)

// ValidUnit verifica que la unidad pertenezca al enum.
func ValidUnit(u string) bool {
	return u == UnitGrams || u == UnitMilliliters || u == UnitUnits
}

// ValidSupplyKind verifica que el tipo pertenezca al enum.
func ValidSupplyKind(k string) bool {
	return k == SupplyKindBase || k == SupplyKindComposite
}

// Supply representa un insumo de producción.
// CurrentStock y UnitCost se mantienen materializados por el motor de
// movimientos: CurrentStock siempre coincide con la reproducción del libro
// y UnitCost refleja la última entrada vigente (total/cantidad).
type Supply struct {
	ID           string
	Name         string // único, sin distinguir mayúsculas/acentos ya normalizados
	Unit         string // GRAMS | MILLILITERS | UNITS
	Kind         string // BASE | COMPOSITE
	CurrentStock decimal.Decimal
	UnitCost     decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CompositeSupplyLink una línea de la "receta" de un insumo compuesto:
// cuántas unidades del insumo base se consumen por unidad ensamblada.
// Solo puede referenciar insumos BASE (sin anidamiento ni auto-referencia).
type CompositeSupplyLink struct {
	SupplyID        string // insumo compuesto dueño del vínculo
	BaseSupplyID    string
	QuantityPerUnit decimal.Decimal
	Position        int
}

// NormalizeName normaliza un nombre para comparación de unicidad:
// NFC (acentos compuestos de forma canónica), espacios recortados y minúsculas.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}
