package exhibitor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/elguarir/gitex-assistant/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "exhibitor:"

// buildHashFields converts a domain Exhibitor into a flat map[string]string for HSET.
// Products and social links are stored as JSON blobs inside the hash.
func buildHashFields(e *domain.Exhibitor) (map[string]string, error) {
	products, err := json.Marshal(e.Products)
	if err != nil {
		return nil, fmt.Errorf("marshal products: %w", err)
	}
	links, err := json.Marshal(e.SocialLinks)
	if err != nil {
		return nil, fmt.Errorf("marshal social_links: %w", err)
	}

	return map[string]string{
		"id":           strconv.FormatInt(e.ID, 10),
		"name":         e.Name,
		"description":  e.Description,
		"stand_number": e.StandNumber,
		"country":      e.Country,
		"logo_url":     e.LogoURL,
		"profile_url":  e.ProfileURL,
		"products":     string(products),
		"social_links": string(links),
	}, nil
}

// parseHashFields converts a flat hash map back into a domain Exhibitor.
// Missing or null JSON blobs come back as empty containers.
func parseHashFields(id int64, m map[string]string) (domain.Exhibitor, error) {
	e := domain.Exhibitor{
		ID:          id,
		Name:        m["name"],
		Description: m["description"],
		StandNumber: m["stand_number"],
		Country:     m["country"],
		LogoURL:     m["logo_url"],
		ProfileURL:  m["profile_url"],
	}

	if raw := m["products"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &e.Products); err != nil {
			return domain.Exhibitor{}, fmt.Errorf("unmarshal products for %d: %w", id, err)
		}
	}
	if raw := m["social_links"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &e.SocialLinks); err != nil {
			return domain.Exhibitor{}, fmt.Errorf("unmarshal social_links for %d: %w", id, err)
		}
	}

	e.Normalize()
	return e, nil
}

func exhibitorKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// parseKeyID extracts the numeric id from a storage key.
func parseKeyID(key string) (int64, error) {
	raw := strings.TrimPrefix(key, keyPrefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid exhibitor key %q: %w", key, err)
	}
	return id, nil
}
