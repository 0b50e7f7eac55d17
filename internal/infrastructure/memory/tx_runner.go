package memory

import (
	"context"

	appledger "github.com/dgallegoc/produccion-api/internal/application/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

var _ appledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks contra el almacén en memoria con semántica de
// transacción: toma una instantánea antes de fn y la restaura si fn falla,
// de modo que un fallo a mitad de un movimiento multi-línea no deja
// mutaciones parciales. Las transacciones se serializan con el mutex del
// almacén.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repositorios atados al almacén; restaura la instantánea
// si fn retorna error.
func (r *TxRunner) Run(_ context.Context, fn func(
	supplyRepo repository.SupplyRepository,
	productRepo repository.ProductRepository,
	recipeRepo repository.RecipeRepository,
	supplyMovRepo repository.SupplyMovementRepository,
	productMovRepo repository.ProductMovementRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snap := r.store.snapshot()
	err := fn(
		NewSupplyRepository(r.store),
		NewProductRepository(r.store),
		NewRecipeRepository(r.store),
		NewSupplyMovementRepository(r.store),
		NewProductMovementRepository(r.store),
	)
	if err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}
