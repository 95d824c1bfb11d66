package repository

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"
	"socialvibe/internal/recordstore"
	"socialvibe/internal/validation"

	"golang.org/x/text/cases"
)

// ProductInput is the editable content of a listing.
type ProductInput struct {
	Title       string
	Description string
	Price       string
	Location    string
	Category    string
	ImageURLs   []string
}

// ProductRepository defines persistence operations for marketplace listings.
type ProductRepository interface {
	Create(ctx context.Context, sellerID string, in ProductInput) (*models.Product, error)
	Update(ctx context.Context, productID, sellerID string, in ProductInput) (*models.Product, error)
	Delete(ctx context.Context, productID string) error
	GetByID(ctx context.Context, productID string) (*models.Product, error)
	List(ctx context.Context, term string) ([]models.ProductListing, error)
}

type productRepository struct {
	products *recordstore.Collection[models.Product]
	users    UserRepository
	opts     options
	log      *observability.RepoLogger
}

// NewProductRepository returns a ProductRepository; users resolves sellers.
func NewProductRepository(store *recordstore.Store, users UserRepository, opts ...Option) ProductRepository {
	return &productRepository{
		products: recordstore.NewCollection[models.Product](store, CollectionProducts),
		users:    users,
		opts:     buildOptions(opts),
		log:      observability.NewRepoLogger(CollectionProducts),
	}
}

func validateListing(in ProductInput) error {
	return validation.Struct(validation.Listing{
		Title:       in.Title,
		Description: in.Description,
		ImageURLs:   in.ImageURLs,
	})
}

func (r *productRepository) Create(ctx context.Context, sellerID string, in ProductInput) (*models.Product, error) {
	if err := validateListing(in); err != nil {
		return nil, err
	}

	now := r.opts.now()
	product := models.Product{
		ID:          models.NewID(),
		SellerID:    sellerID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Location:    in.Location,
		Category:    in.Category,
		ImageURLs:   cloneOrEmpty(in.ImageURLs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.products.Mutate(ctx, func(products []models.Product) ([]models.Product, error) {
		return append([]models.Product{product}, products...), nil
	})
	if err != nil {
		return nil, err
	}
	r.log.LogMutation(ctx, "create", slog.String("product_id", product.ID), slog.String("seller_id", sellerID))
	return &product, nil
}

// Update replaces the listing content. Only the seller may edit it.
func (r *productRepository) Update(ctx context.Context, productID, sellerID string, in ProductInput) (*models.Product, error) {
	if err := validateListing(in); err != nil {
		return nil, err
	}

	var product models.Product
	err := r.products.Mutate(ctx, func(products []models.Product) ([]models.Product, error) {
		i := slices.IndexFunc(products, func(p models.Product) bool { return p.ID == productID })
		if i < 0 {
			return nil, models.NewNotFoundError("Product", productID)
		}
		p := &products[i]
		if p.SellerID != sellerID {
			return nil, models.NewUnauthorizedError("Only the seller can edit this listing")
		}
		p.Title = strings.TrimSpace(in.Title)
		p.Description = strings.TrimSpace(in.Description)
		p.Price = in.Price
		p.Location = in.Location
		p.Category = in.Category
		p.ImageURLs = cloneOrEmpty(in.ImageURLs)
		p.UpdatedAt = r.opts.now()
		product = *p
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	r.log.LogMutation(ctx, "update", slog.String("product_id", productID))
	return &product, nil
}

func (r *productRepository) Delete(ctx context.Context, productID string) error {
	err := r.products.Mutate(ctx, func(products []models.Product) ([]models.Product, error) {
		i := slices.IndexFunc(products, func(p models.Product) bool { return p.ID == productID })
		if i < 0 {
			return nil, models.NewNotFoundError("Product", productID)
		}
		return slices.Delete(products, i, i+1), nil
	})
	if err != nil {
		return err
	}
	r.log.LogMutation(ctx, "delete", slog.String("product_id", productID))
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	products, _, err := r.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(products, func(p models.Product) bool { return p.ID == productID })
	if i < 0 {
		return nil, models.NewNotFoundError("Product", productID)
	}
	return &products[i], nil
}

// List returns listings newest first, joined with the seller's current
// username and avatar. A term filters on title, description and category.
func (r *productRepository) List(ctx context.Context, term string) ([]models.ProductListing, error) {
	products, _, err := r.products.Load(ctx)
	if err != nil {
		return nil, err
	}
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, err
	}

	sellers := make(map[string]models.SellerView, len(users))
	for _, u := range users {
		sellers[u.ID] = models.SellerView{Username: u.Username, Avatar: u.Avatar}
	}

	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(term))

	out := make([]models.ProductListing, 0, len(products))
	for _, p := range products {
		if needle != "" &&
			!strings.Contains(fold.String(p.Title), needle) &&
			!strings.Contains(fold.String(p.Description), needle) &&
			!strings.Contains(fold.String(p.Category), needle) {
			continue
		}
		seller, ok := sellers[p.SellerID]
		if !ok {
			seller = models.UnknownSeller
		}
		out = append(out, models.ProductListing{Product: p, Seller: seller})
	}
	slices.SortStableFunc(out, func(a, b models.ProductListing) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
