package logistics

import (
	"context"
	"errors"

	"github.com/bizconsole/backend/internal/domain/logistics"
	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// maxCategoryDepth bounds the parent walk of the cycle check
const maxCategoryDepth = 32

// CategoryService handles category operations
type CategoryService struct {
	store[logistics.Category]
}

// Create creates a category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*logistics.Category, error) {
	if err := mustExist(ctx, s.repo, req.ParentID, "PARENT", "Category"); err != nil {
		return nil, err
	}
	category, err := logistics.NewCategory(req.Name, req.Description, req.ParentID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, category)
}

// Update applies a partial update. Re-parenting under a descendant is rejected.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*logistics.Category, error) {
	if req.ParentID != nil {
		if err := mustExist(ctx, s.repo, req.ParentID, "PARENT", "Category"); err != nil {
			return nil, err
		}
		if err := s.checkCycle(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
	}
	return s.update(ctx, id, func(c *logistics.Category) error {
		return c.Apply(req.patch())
	})
}

func (s *CategoryService) checkCycle(ctx context.Context, id, parentID uuid.UUID) error {
	current := &parentID
	for depth := 0; current != nil && depth < maxCategoryDepth; depth++ {
		if *current == id {
			return shared.NewDomainError("INVALID_PARENT", "Category cannot be moved under its own subtree")
		}
		parent, err := s.repo.FindByID(ctx, *current)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		current = parent.ParentID
	}
	return nil
}

// ProductService handles product operations
type ProductService struct {
	store[logistics.Product]
	repos Repositories
}

// Create creates a product. SKUs are unique regardless of case.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*logistics.Product, error) {
	if err := mustExist(ctx, s.repos.Categories, req.CategoryID, "CATEGORY", "Category"); err != nil {
		return nil, err
	}
	product, err := logistics.NewProduct(req.SKU, req.Name, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	if err := product.Apply(req.patch()); err != nil {
		return nil, err
	}
	if err := s.checkSKU(ctx, product.SKU, uuid.Nil); err != nil {
		return nil, err
	}
	return s.create(ctx, product)
}

// Update applies a partial update
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*logistics.Product, error) {
	if err := mustExist(ctx, s.repos.Categories, req.CategoryID, "CATEGORY", "Category"); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(p *logistics.Product) error {
		if err := p.Apply(req.patch()); err != nil {
			return err
		}
		return s.checkSKU(ctx, p.SKU, p.ID)
	})
}

// FindBySKU looks a product up by SKU
func (s *ProductService) FindBySKU(ctx context.Context, sku string) (*logistics.Product, error) {
	return s.repos.Products.FindBySKU(ctx, sku)
}

func (s *ProductService) checkSKU(ctx context.Context, sku string, self uuid.UUID) error {
	existing, err := s.repos.Products.FindBySKU(ctx, sku)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return shared.NewDomainError("ALREADY_EXISTS", "Product with SKU "+sku+" already exists")
	}
	return nil
}
