package model

import "time"

// Car is a base vehicle that customizations are applied to.
type Car struct {
	ID           uint64    `json:"id"`             // cars.id
	Make         string    `json:"make"`           // cars.make
	Model        string    `json:"model"`          // cars.model
	Year         uint16    `json:"year"`           // cars.year
	BaseImageURL string    `json:"base_image_url"` // cars.base_image_url
	CreatedAt    time.Time `json:"created_at"`     // cars.created_at
}

// Category groups parts for browsing. PartCount is a denormalized counter
// maintained inside the same transaction as every part insert or delete;
// it must never be recomputed out of band.
type Category struct {
	ID        uint64    // categories.id
	Name      string    // categories.name
	Slug      string    // categories.slug
	PartCount uint32    // categories.part_count
	CreatedAt time.Time // categories.created_at
}

// Part is a purchasable automotive part listed by a seller.
//
// Fields:
//  ID            – primary key identifier.
//  CategoryID    – owning category.
//  SellerID      – user (SELLER role) listing the part.
//  Name          – display name.
//  Description   – free-form description.
//  PricePaise    – current unit price in paise.
//  StockQuantity – units available; never negative.
//  ImageURL      – product image.
type Part struct {
	ID            uint64    // parts.id
	CategoryID    uint64    // parts.category_id
	SellerID      uint64    // parts.seller_id
	Name          string    // parts.name
	Description   string    // parts.description
	PricePaise    int64     // parts.price_paise
	StockQuantity int32     // parts.stock_quantity
	ImageURL      string    // parts.image_url
	CreatedAt     time.Time // parts.created_at
	UpdatedAt     time.Time // parts.updated_at
}

// GalleryItem is a marketing image shown on the landing pages.
type GalleryItem struct {
	ID        uint64    `json:"id"`         // gallery_items.id
	Title     string    `json:"title"`      // gallery_items.title
	ImageURL  string    `json:"image_url"`  // gallery_items.image_url
	Caption   string    `json:"caption"`    // gallery_items.caption
	CreatedAt time.Time `json:"created_at"` // gallery_items.created_at
}
