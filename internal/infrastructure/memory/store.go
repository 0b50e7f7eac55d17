// Package memory implementa los puertos de persistencia sobre mapas en
// memoria, con transacciones por instantánea (copiar y restaurar). Se usa en
// tests del motor y como backend liviano para experimentos; el backend de
// producción es el paquete postgres.
package memory

import (
	"sync"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
)

// Store contiene todo el estado en memoria. Las operaciones individuales no
// son seguras para concurrencia; TxRunner serializa las transacciones con un
// mutex, igual que una BD serializaría escritores sobre las mismas filas.
type Store struct {
	mu sync.Mutex

	supplies map[string]entity.Supply
	links    map[string][]entity.CompositeSupplyLink // por insumo compuesto
	products map[string]entity.Product
	recipes  map[string]entity.Recipe // por producto
	// recipeLines indexa por ID de receta.
	recipeLines map[string][]entity.RecipeLine

	supplyMovs   map[string]entity.SupplyMovement
	supplyLines  map[string][]entity.SupplyMovementLine // por movimiento
	productMovs  map[string]entity.ProductMovement
	productLines map[string][]entity.ProductMovementLine // por movimiento
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		supplies:     make(map[string]entity.Supply),
		links:        make(map[string][]entity.CompositeSupplyLink),
		products:     make(map[string]entity.Product),
		recipes:      make(map[string]entity.Recipe),
		recipeLines:  make(map[string][]entity.RecipeLine),
		supplyMovs:   make(map[string]entity.SupplyMovement),
		supplyLines:  make(map[string][]entity.SupplyMovementLine),
		productMovs:  make(map[string]entity.ProductMovement),
		productLines: make(map[string][]entity.ProductMovementLine),
	}
}

// snapshot copia profunda del estado, para revertir una transacción fallida.
func (s *Store) snapshot() *Store {
	snap := NewStore()
	for k, v := range s.supplies {
		snap.supplies[k] = v
	}
	for k, v := range s.links {
		snap.links[k] = append([]entity.CompositeSupplyLink(nil), v...)
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.recipes {
		snap.recipes[k] = v
	}
	for k, v := range s.recipeLines {
		snap.recipeLines[k] = append([]entity.RecipeLine(nil), v...)
	}
	for k, v := range s.supplyMovs {
		snap.supplyMovs[k] = v
	}
	for k, v := range s.supplyLines {
		snap.supplyLines[k] = append([]entity.SupplyMovementLine(nil), v...)
	}
	for k, v := range s.productMovs {
		snap.productMovs[k] = v
	}
	for k, v := range s.productLines {
		snap.productLines[k] = append([]entity.ProductMovementLine(nil), v...)
	}
	return snap
}

// restore reemplaza el estado por el de la instantánea.
func (s *Store) restore(snap *Store) {
	s.supplies = snap.supplies
	s.links = snap.links
	s.products = snap.products
	s.recipes = snap.recipes
	s.recipeLines = snap.recipeLines
	s.supplyMovs = snap.supplyMovs
	s.supplyLines = snap.supplyLines
	s.productMovs = snap.productMovs
	s.productLines = snap.productLines
}
