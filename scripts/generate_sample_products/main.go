package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type product struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
}

// generateSampleProducts writes a JSON product fixture file usable as
// SEED_FILE for local development.
func main() {
	dataDir := "data"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	products := []product{
		{
			Name:        "Wireless Mouse",
			Description: "Ergonomic 2.4GHz wireless mouse with adjustable DPI",
			Price:       24.99,
			Category:    "Electronics",
			Stock:       120,
			Images:      []string{"/images/wireless-mouse.jpg"},
		},
		{
			Name:        "Mechanical Keyboard",
			Description: "Tenkeyless mechanical keyboard with hot-swappable switches",
			Price:       89.99,
			Category:    "Electronics",
			Stock:       45,
			Images:      []string{"/images/mechanical-keyboard.jpg"},
		},
		{
			Name:        "Running Shoes",
			Description: "Lightweight road running shoes with responsive cushioning",
			Price:       119.00,
			Category:    "Footwear",
			Stock:       60,
			Images:      []string{"/images/running-shoes.jpg"},
		},
		{
			Name:        "Stainless Water Bottle",
			Description: "Vacuum-insulated 750ml bottle, keeps drinks cold for 24 hours",
			Price:       18.50,
			Category:    "Outdoors",
			Stock:       200,
			Images:      []string{"/images/water-bottle.jpg"},
		},
		{
			Name:        "Noise Cancelling Headphones",
			Description: "Over-ear Bluetooth headphones with active noise cancellation",
			Price:       249.99,
			Category:    "Electronics",
			Stock:       30,
			Images:      []string{"/images/headphones.jpg", "/images/headphones-case.jpg"},
		},
	}

	filePath := filepath.Join(dataDir, "products.json")

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode products: %v", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(products))
	fmt.Println("Set SEED_FILE=data/products.json to seed the catalogue on startup.")
}
