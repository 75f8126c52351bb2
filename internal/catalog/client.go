package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Product is the catalog's view of a product: metadata plus the
// initial stock allocation for this warehouse.
type Product struct {
	ProductID string
	Name      string
	Quantity  int
}

// Client fetches product metadata from the product-catalog service.
//
// The catalog is the authoritative source for the seed at startup; the
// reservation engine never calls it on the hot path. Live re-sync is a
// future integration, so ListProducts currently serves the known
// catalog without a round trip.
type Client struct {
	addr string
	conn *grpc.ClientConn
}

// NewClient creates a client for the catalog at addr.
func NewClient(addr string) *Client {
	return &Client{addr: addr}
}

// Connect opens the gRPC channel to the catalog service.
func (c *Client) Connect() error {
	conn, err := grpc.NewClient(c.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to product catalog at %s: %w", c.addr, err)
	}
	c.conn = conn
	log.Info().Str("address", c.addr).Msg("Connected to product catalog")
	return nil
}

// Close closes the gRPC channel.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// ListProducts returns the catalog used to seed the inventory.
//
// TODO: call the ProductCatalogService ListProducts RPC once the
// catalog exposes stock allocations per warehouse.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	log.Debug().Msg("product catalog ListProducts called (served from static catalog)")
	return seedCatalog(), nil
}

// seedCatalog is the Astronomy Shop product list with this warehouse's
// stock allocation.
func seedCatalog() []Product {
	return []Product{
		{ProductID: "OLJCESPC7Z", Name: "National Park Foundation Explorascope", Quantity: 100},
		{ProductID: "66VCHSJNUP", Name: "Starsense Explorer Telescope", Quantity: 50},
		{ProductID: "1YMWWN1N4O", Name: "Roof Binoculars", Quantity: 200},
		{ProductID: "L9ECAV7KIM", Name: "Eclipsmart Travel Refractor Telescope", Quantity: 30},
		{ProductID: "2ZYFJ3GM2N", Name: "Solar System Color Imager", Quantity: 75},
		{ProductID: "0PUK6V6EV0", Name: "Solar Filter", Quantity: 150},
		{ProductID: "LS4PSXUNUM", Name: "Red Flashlight", Quantity: 500},
		{ProductID: "9SIQT8TOJO", Name: "Optical Tube Assembly", Quantity: 25},
		{ProductID: "6E92ZMYYFZ", Name: "The Comet Book", Quantity: 300},
		{ProductID: "HQTGWGPNH4", Name: "Lens Cleaning Kit", Quantity: 1000},
	}
}
