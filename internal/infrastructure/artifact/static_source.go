package artifact

import (
	"context"
	"fmt"
	"sync"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/rs/zerolog/log"
)

// StaticSource serves products from a generated catalog file.
// The file is loaded on first use and kept in memory.
type StaticSource struct {
	path string

	once     sync.Once
	loadErr  error
	products []domain.Product
	byHandle map[string]int
}

// NewStaticSource creates a product source reading the catalog at path
func NewStaticSource(path string) *StaticSource {
	return &StaticSource{path: path}
}

func (s *StaticSource) load() error {
	s.once.Do(func() {
		products, err := Read(s.path)
		if err != nil {
			s.loadErr = err
			return
		}
		s.products = products
		s.byHandle = make(map[string]int, len(products))
		for i, p := range products {
			if _, dup := s.byHandle[p.Handle]; !dup {
				s.byHandle[p.Handle] = i
			}
		}
		log.Info().Str("path", s.path).Int("products", len(products)).Msg("static catalog loaded")
	})
	return s.loadErr
}

// Product returns the product with the given handle
func (s *StaticSource) Product(ctx context.Context, handle string) (*domain.Product, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	i, ok := s.byHandle[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, handle)
	}
	p := s.products[i].Clone()
	return &p, nil
}

// Products returns a deep copy of the whole catalog
func (s *StaticSource) Products(ctx context.Context) ([]domain.Product, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(s.products))
	for i := range s.products {
		out[i] = s.products[i].Clone()
	}
	return out, nil
}
