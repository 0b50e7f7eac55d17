package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
)

// Entry una línea del libro de movimientos de una entidad (insumo o
// producto), aplanada para reproducción: fecha y orden de inserción del
// movimiento, dirección y cantidad de la línea. TotalCost solo se usa en
// entradas de insumos para recalcular el costo unitario.
type Entry struct {
	MovementID string
	Date       time.Time
	CreatedAt  time.Time
	Direction  string // IN | OUT
	Quantity   decimal.Decimal
	TotalCost  decimal.Decimal
}

// sortEntries ordena ascendente por fecha del movimiento; empates por orden
// de inserción (created_at) y por último por ID para determinismo total.
func sortEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].MovementID < out[j].MovementID
	})
	return out
}

// StockAsOf reproduce el libro hasta la fecha dada (inclusive): suma las
// entradas y resta las salidas con fecha de movimiento <= at.
func StockAsOf(entries []Entry, at time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range sortEntries(entries) {
		if e.Date.After(at) {
			break
		}
		if e.Direction == entity.DirectionIn {
			total = total.Add(e.Quantity)
		} else {
			total = total.Sub(e.Quantity)
		}
	}
	return total
}

// CurrentStock reproduce el libro completo. El campo materializado
// current_stock de la entidad debe coincidir siempre con este valor.
func CurrentStock(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Direction == entity.DirectionIn {
			total = total.Add(e.Quantity)
		} else {
			total = total.Sub(e.Quantity)
		}
	}
	return total
}

// LatestUnitCost deriva el costo unitario vigente de un insumo a partir de su
// historial: total/cantidad de la última entrada (IN) restante, o cero si no
// queda ninguna entrada. Se usa tras eliminar un movimiento para recalcular
// retroactivamente el costo.
func LatestUnitCost(entries []Entry) decimal.Decimal {
	sorted := sortEntries(entries)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		if e.Direction != entity.DirectionIn {
			continue
		}
		if e.Quantity.IsZero() {
			return decimal.Zero
		}
		return e.TotalCost.Div(e.Quantity)
	}
	return decimal.Zero
}
