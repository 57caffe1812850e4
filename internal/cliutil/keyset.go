package cliutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"github.com/nonibytes/gamestore/gamestore/order"
)

// KeysetCache remembers the first entry of every page seen for one query, so
// later jumps seek straight to a page instead of walking to it.
type KeysetCache struct {
	Fingerprint string         `json:"fingerprint"`
	Size        int            `json:"size"`
	Pages       map[int]string `json:"pages"`
}

// LoadKeysetCache reads path. A missing file, or one written for another
// query or page size, yields an empty cache.
func LoadKeysetCache(path, fingerprint string, size int) (*KeysetCache, error) {
	empty := &KeysetCache{Fingerprint: fingerprint, Size: size, Pages: map[int]string{}}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return empty, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keyset cache: %w", err)
	}
	var c KeysetCache
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("keyset cache %s: %w", path, err)
	}
	if c.Fingerprint != fingerprint || c.Size != size || c.Pages == nil {
		return empty, nil
	}
	return &c, nil
}

// Entry returns the cached first entry of page.
func (c *KeysetCache) Entry(page int) (*order.Entry, bool) {
	tok, ok := c.Pages[page]
	if !ok {
		return nil, false
	}
	e, err := order.DecodeEntry(tok)
	if err != nil {
		return nil, false
	}
	return &e, true
}

// Merge records entries keyed by page index.
func (c *KeysetCache) Merge(entries map[int]*order.Entry) error {
	for page, e := range entries {
		tok, err := order.EncodeEntry(*e)
		if err != nil {
			return err
		}
		c.Pages[page] = tok
	}
	return nil
}

// Save replaces path atomically.
func (c *KeysetCache) Save(path string) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("keyset cache: %w", err)
	}
	return nil
}
