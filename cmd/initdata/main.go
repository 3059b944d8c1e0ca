// Command initdata seeds a running AuctionHouse API with demo sellers,
// bidders and upcoming products.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	baseURL   = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	password  = flag.String("pass", env("PASSWORD", "Password123"), "Password for every seeded account")
	nSellers  = flag.Int("sellers", envInt("SELLERS", 3), "How many seller accounts to create")
	nBidders  = flag.Int("bidders", envInt("BIDDERS", 10), "How many bidder accounts to create")
	nProducts = flag.Int("products", envInt("PRODUCTS_PER_SELLER", 5), "Products listed per seller")
)

// placeholder image, one transparent PNG pixel
const demoImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

var conditions = []string{"New", "Used", "Antique"}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}

type seeder struct {
	base   string
	client *http.Client
}

type account struct {
	Email string
	Token string
}

func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	s := &seeder{base: *baseURL, client: &http.Client{Timeout: 10 * time.Second}}
	fmt.Printf("Seeding %s: sellers=%d bidders=%d products/seller=%d\n",
		s.base, *nSellers, *nBidders, *nProducts)

	if err := s.run(*nSellers, *nBidders, *nProducts); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	fmt.Println("done")
}

func (s *seeder) run(sellers, bidders, perSeller int) error {
	var productIDs []string
	for i := 0; i < sellers; i++ {
		seller, err := s.signUp(*password)
		if err != nil {
			return fmt.Errorf("seller %d: %w", i+1, err)
		}
		for j := 0; j < perSeller; j++ {
			id, err := s.createProduct(seller.Token, fakeProduct(time.Now()))
			if err != nil {
				return fmt.Errorf("product %d of %s: %w", j+1, seller.Email, err)
			}
			productIDs = append(productIDs, id)
		}
		fmt.Printf("  seller %s listed %d products\n", seller.Email, perSeller)
	}

	for i := 0; i < bidders; i++ {
		bidder, err := s.signUp(*password)
		if err != nil {
			return fmt.Errorf("bidder %d: %w", i+1, err)
		}
		if len(productIDs) == 0 {
			continue
		}
		// register each bidder for a few random products; full ledgers are expected
		for k := 0; k < gofakeit.Number(1, 3); k++ {
			id := productIDs[gofakeit.Number(0, len(productIDs)-1)]
			status, err := s.register(bidder.Token, id)
			if err != nil {
				return err
			}
			fmt.Printf("  bidder %s -> %s: %d\n", bidder.Email, id, status)
		}
	}
	return nil
}

// fakeProduct builds a create-product payload that starts between one hour
// and two weeks from now.
func fakeProduct(now time.Time) map[string]any {
	start := now.Add(time.Duration(gofakeit.Number(1, 14*24)) * time.Hour)
	return map[string]any{
		"title":            gofakeit.ProductName(),
		"description":      gofakeit.Paragraph(1, 2, 20, " "),
		"images":           []string{demoImage},
		"category":         gofakeit.ProductCategory(),
		"condition":        gofakeit.RandomString(conditions),
		"startingPrice":    gofakeit.Price(5, 500),
		"bidIncrement":     float64(gofakeit.Number(1, 25)),
		"auctionStart":     start.UTC().Format(time.RFC3339),
		"maxRegistrations": gofakeit.Number(2, 20),
	}
}

func (s *seeder) signUp(pass string) (account, error) {
	email := gofakeit.Email()
	reg := map[string]string{
		"firstName":       gofakeit.FirstName(),
		"lastName":        gofakeit.LastName(),
		"email":           email,
		"password":        pass,
		"confirmPassword": pass,
	}
	status, body, err := s.postJSON("/api/auth/register", reg, "")
	if err != nil {
		return account{}, err
	}
	if status != http.StatusCreated {
		return account{}, fmt.Errorf("register %s failed (%d): %s", email, status, body)
	}

	status, body, err = s.postJSON("/api/auth/login", map[string]string{"email": email, "password": pass}, "")
	if err != nil {
		return account{}, err
	}
	if status != http.StatusOK {
		return account{}, fmt.Errorf("login %s failed (%d): %s", email, status, body)
	}
	var r struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return account{}, err
	}
	return account{Email: email, Token: r.Token}, nil
}

func (s *seeder) createProduct(token string, payload map[string]any) (string, error) {
	status, body, err := s.postJSON("/api/products", payload, token)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("create failed (%d): %s", status, body)
	}
	var r struct {
		Product struct {
			ID string `json:"_id"`
		} `json:"product"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return "", err
	}
	return r.Product.ID, nil
}

// register returns the HTTP status; 4xx outcomes are normal for random picks.
func (s *seeder) register(token, productID string) (int, error) {
	status, body, err := s.postJSON("/api/products/register/"+productID, nil, token)
	if err != nil {
		return 0, err
	}
	if status >= http.StatusInternalServerError {
		return status, fmt.Errorf("register for %s failed (%d): %s", productID, status, body)
	}
	return status, nil
}

func (s *seeder) postJSON(path string, payload any, token string) (int, []byte, error) {
	var rdr io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(http.MethodPost, s.base+path, rdr)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}
