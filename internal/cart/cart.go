// Package cart keeps the working copy of the user's cart and reconciles it
// with whichever backing store currently owns the truth.
//
// The mode is decided per operation from credential presence, never cached:
//
//   - Anonymous: the cart lives in a local JSON document under the data
//     directory. Mutations persist synchronously before they return.
//   - Authenticated: the server owns the cart. Every mutation posts to the
//     API and the in-memory mirror is replaced with whatever the server
//     returns.
//
// Logging in does NOT merge the local cart automatically — Merge is an
// explicit operation the CLI offers when a non-empty local cart exists.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/pkg/credentials"
	"github.com/shashiranjanraj/sofreh/pkg/event"
	"github.com/shashiranjanraj/sofreh/pkg/gateway"
	"github.com/shashiranjanraj/sofreh/pkg/httpx"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/metrics"
	"github.com/shashiranjanraj/sofreh/pkg/storage"
)

// Document is the local cart file inside the data directory.
const Document = "cart.json"

// Mode tells which backing store owns the cart right now.
type Mode string

const (
	ModeAnonymous     Mode = "anonymous"
	ModeAuthenticated Mode = "authenticated"
)

// CurrentMode derives the mode from credential presence.
func CurrentMode() Mode {
	if credentials.Pair().Empty() {
		return ModeAnonymous
	}
	return ModeAuthenticated
}

// Store holds the in-memory cart mirror.
type Store struct {
	mu    sync.RWMutex
	lines models.Cart
}

func NewStore() *Store {
	return &Store{}
}

// ─── Reads ────────────────────────────────────────────────────────────────────

// Lines returns a copy of the current mirror.
func (s *Store) Lines() []models.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total is the sum of quantity × effective price over the mirror.
// Derived on every call, never stored.
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lines.Total()
}

// Len returns the number of lines in the mirror.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// ─── Load ─────────────────────────────────────────────────────────────────────

// Load initializes the mirror from the current backing store. Failures are
// logged and leave an empty cart; they are never returned, so a broken
// document or an unreachable server can't wedge startup.
func (s *Store) Load(ctx context.Context) {
	mode := CurrentMode()
	metrics.CartOps.WithLabelValues("load", string(mode)).Inc()

	var lines models.Cart
	if mode == ModeAuthenticated {
		fetched, err := fetchServerCart(ctx)
		if err != nil {
			logger.Warn("cart: server load failed, starting empty", "error", err)
		} else {
			lines = fetched
		}
	} else {
		doc, err := readDocument()
		if err != nil {
			logger.Warn("cart: local document unreadable, starting empty", "error", err)
		} else {
			lines = doc
		}
	}

	s.replace(lines)
}

// ─── Mutations ────────────────────────────────────────────────────────────────

// Add puts qty units of food in the cart. Lines aggregate by food id: adding
// a food twice grows one line instead of creating a second.
func (s *Store) Add(ctx context.Context, food models.Food, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("cart: quantity must be positive, got %d", qty)
	}

	mode := CurrentMode()
	metrics.CartOps.WithLabelValues("add", string(mode)).Inc()

	if mode == ModeAuthenticated {
		body := map[string]int{"food_id": food.ID, "quantity": qty}
		resp, err := gateway.Send(httpx.Post(gateway.URL("/cart/add/")).Body(body).WithContext(ctx))
		if err != nil {
			return err
		}
		if err := resp.Throw(); err != nil {
			return fmt.Errorf("cart: add: %w", err)
		}
		return s.adopt(resp)
	}

	s.mu.Lock()
	if i := s.lines.Find(food.ID); i >= 0 {
		s.lines[i].Quantity += qty
	} else {
		s.lines = append(s.lines, models.CartLine{Food: food, Quantity: qty})
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := writeDocument(snapshot); err != nil {
		return err
	}
	event.Fire("cart.changed", snapshot)
	return nil
}

// Remove takes food out of the cart. With fullRemove the whole line goes;
// otherwise the quantity drops by one, and a line at quantity 1 disappears
// entirely. Removing an absent food is a no-op.
func (s *Store) Remove(ctx context.Context, foodID int, fullRemove bool) error {
	mode := CurrentMode()
	metrics.CartOps.WithLabelValues("remove", string(mode)).Inc()

	if mode == ModeAuthenticated {
		var req *httpx.Request
		if fullRemove {
			req = httpx.Delete(gateway.URL("/cart/remove/")).Body(map[string]int{"food_id": foodID})
		} else {
			req = httpx.Post(gateway.URL("/cart/decrement/")).Body(map[string]int{"food_id": foodID})
		}
		resp, err := gateway.Send(req.WithContext(ctx))
		if err != nil {
			return err
		}
		if err := resp.Throw(); err != nil {
			return fmt.Errorf("cart: remove: %w", err)
		}
		return s.adopt(resp)
	}

	s.mu.Lock()
	i := s.lines.Find(foodID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	if fullRemove || s.lines[i].Quantity <= 1 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	} else {
		s.lines[i].Quantity--
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := writeDocument(snapshot); err != nil {
		return err
	}
	event.Fire("cart.changed", snapshot)
	return nil
}

// Clear empties the mirror and, in anonymous mode, deletes the local
// document. The CLI calls it after a paid order.
func (s *Store) Clear() error {
	if CurrentMode() == ModeAnonymous && storage.Exists(Document) {
		if err := storage.Delete(Document); err != nil {
			return fmt.Errorf("cart: clear document: %w", err)
		}
	}
	s.replace(nil)
	return nil
}

// Merge replays the anonymous cart document into the server cart, then
// deletes the document. It only exists so a user who filled a cart before
// logging in can carry it over; it is never run implicitly.
func (s *Store) Merge(ctx context.Context) error {
	if CurrentMode() != ModeAuthenticated {
		return fmt.Errorf("cart: merge requires a logged-in session")
	}
	metrics.CartOps.WithLabelValues("merge", string(ModeAuthenticated)).Inc()

	doc, err := readDocument()
	if err != nil {
		return fmt.Errorf("cart: merge: %w", err)
	}
	if len(doc) == 0 {
		s.Load(ctx)
		return nil
	}

	for _, line := range doc {
		body := map[string]int{"food_id": line.Food.ID, "quantity": line.Quantity}
		resp, err := gateway.Send(httpx.Post(gateway.URL("/cart/add/")).Body(body).WithContext(ctx))
		if err != nil {
			return fmt.Errorf("cart: merge %q: %w", line.Food.Name, err)
		}
		if err := resp.Throw(); err != nil {
			return fmt.Errorf("cart: merge %q: %w", line.Food.Name, err)
		}
	}

	if storage.Exists(Document) {
		if err := storage.Delete(Document); err != nil {
			logger.Warn("cart: merged but local document not deleted", "error", err)
		}
	}

	logger.Info("cart: local cart merged into server cart", "lines", len(doc))
	s.Load(ctx)
	return nil
}

// ─── Internals ────────────────────────────────────────────────────────────────

// adopt replaces the mirror with the cart the server returned.
func (s *Store) adopt(resp *httpx.Response) error {
	var fresh models.Cart
	if err := resp.JSON(&fresh); err != nil {
		return fmt.Errorf("cart: decode server cart: %w", err)
	}
	s.replace(fresh)
	return nil
}

func (s *Store) replace(lines models.Cart) {
	s.mu.Lock()
	s.lines = lines
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	event.Fire("cart.changed", snapshot)
}

func (s *Store) snapshotLocked() models.Cart {
	out := make(models.Cart, len(s.lines))
	copy(out, s.lines)
	return out
}

func fetchServerCart(ctx context.Context) (models.Cart, error) {
	resp, err := gateway.Send(httpx.Get(gateway.URL("/cart/")).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, err
	}
	var c models.Cart
	if err := resp.JSON(&c); err != nil {
		return nil, err
	}
	return c, nil
}

func readDocument() (models.Cart, error) {
	if !storage.Exists(Document) {
		return nil, nil
	}
	raw, err := storage.Get(Document)
	if err != nil {
		return nil, err
	}
	var c models.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", Document, err)
	}
	return c, nil
}

func writeDocument(c models.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart: encode document: %w", err)
	}
	if err := storage.Put(Document, raw); err != nil {
		return fmt.Errorf("cart: persist document: %w", err)
	}
	return nil
}
