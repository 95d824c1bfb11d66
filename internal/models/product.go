package models

import "time"

// MaxProductImages caps the number of images on a listing.
const MaxProductImages = 5

// Product is a marketplace listing owned by one seller.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"sellerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price,omitempty"`
	Location    string    `json:"location,omitempty"`
	Category    string    `json:"category,omitempty"`
	ImageURLs   []string  `json:"imageUrls"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SellerView is the live seller info joined onto listings at read time.
type SellerView struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// UnknownSeller is shown when a listing's seller no longer exists.
var UnknownSeller = SellerView{Username: "Unknown"}

// ProductListing is a product joined with its seller.
type ProductListing struct {
	Product
	Seller SellerView `json:"seller"`
}
