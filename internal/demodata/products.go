package demodata

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/streamssr/streamssr/internal/section"
)

// Product is a catalog item.
type Product struct {
	ID          int
	Name        string
	Description string
	Price       int
	Category    string
	Rating      float64
	Image       string
}

var (
	productAdjectives = []string{"Quantum", "Neural", "Holographic", "Fusion", "Nano", "Anti-Gravity", "Hyper", "Bio", "Cyber", "Plasma", "Photon", "Stellar", "Atomic", "Sonic", "Cryo"}
	productNouns      = []string{"Processor", "Interface", "Display", "Battery", "Scanner", "Boots", "Helmet", "Gloves", "Reactor", "Engine", "Module", "Core", "Matrix", "Drive", "Lens"}
	productCategories = []string{"Electronics", "Biotech", "Display", "Energy", "Healthcare", "Transport", "Gaming", "Security", "Communication", "Wearables"}
	productEmojis     = []string{"🔮", "🧠", "📺", "🔋", "💊", "👟", "🎮", "🛡️", "📡", "⌚", "🔬", "🚀", "💎", "🌟", "⚡", "🎯", "🔧", "🌈"}
	productSuffixes   = []string{"X", "Pro", "Max", "Ultra", "Elite", "Plus"}
	productUses       = []string{"productivity", "entertainment", "health", "mobility", "security", "communication", "gaming", "fitness"}

	descriptionTemplates = []string{
		"Next-gen {adj} technology with {num} quantum cores",
		"Revolutionary {adj} system for enhanced {use}",
		"Immersive {adj} experience with {num}-year warranty",
		"Advanced {adj} solution powered by AI",
		"Ultra-efficient {adj} device with {num}x performance",
		"Premium {adj} gear for professional {use}",
		"Cutting-edge {adj} innovation for daily {use}",
		"Smart {adj} companion with real-time analytics",
	}
)

func pick(r *rand.Rand, list []string) string {
	return list[r.IntN(len(list))]
}

// Products returns 3 to 9 products with ids starting at 1.
func Products(r *rand.Rand) ([]Product, error) {
	count := 3 + r.IntN(7)
	products := make([]Product, count)
	for i := range products {
		products[i] = newProduct(r, i+1)
	}
	return products, nil
}

func newProduct(r *rand.Rand, id int) Product {
	adj := pick(r, productAdjectives)
	noun := pick(r, productNouns)
	category := pick(r, productCategories)
	emoji := pick(r, productEmojis)
	suffix := pick(r, productSuffixes)

	description := strings.NewReplacer(
		"{adj}", strings.ToLower(adj),
		"{num}", strconv.Itoa(2+r.IntN(10)),
		"{use}", pick(r, productUses),
	).Replace(pick(r, descriptionTemplates))

	return Product{
		ID:          id,
		Name:        fmt.Sprintf("%s %s %s%d", adj, noun, suffix, r.IntN(10)),
		Description: description,
		Price:       299 + r.IntN(4700),
		Category:    category,
		Rating:      math.Round((3.5+r.Float64()*1.5)*10) / 10,
		Image:       emoji,
	}
}

// ProductsSource is the catalog section source: 300ms to 3.3s latency.
func ProductsSource() section.Source[Product] {
	return section.Source[Product]{
		Name:     "products",
		MinDelay: 300 * time.Millisecond,
		MaxDelay: 3300 * time.Millisecond,
		Generate: Products,
	}
}
