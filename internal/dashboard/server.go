// Package dashboard serves the vendor's local dashboard: the merged
// reservation feed, the local order history, a live SSE stream, a GraphQL
// read endpoint and prometheus metrics. It binds on DASHBOARD_ADDR and is
// meant to run next to the vendor, not on the public internet.
package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/app/services"
	"github.com/shashiranjanraj/sofreh/config"
	"github.com/shashiranjanraj/sofreh/internal/feed"
	"github.com/shashiranjanraj/sofreh/internal/history"
	"github.com/shashiranjanraj/sofreh/pkg/bind"
	"github.com/shashiranjanraj/sofreh/pkg/event"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/metrics"
	"github.com/shashiranjanraj/sofreh/pkg/middleware"
	"github.com/shashiranjanraj/sofreh/pkg/queue"
	"github.com/shashiranjanraj/sofreh/pkg/reqid"
	"github.com/shashiranjanraj/sofreh/pkg/resource"
	"github.com/shashiranjanraj/sofreh/pkg/response"
	"github.com/shashiranjanraj/sofreh/pkg/router"
	"github.com/shashiranjanraj/sofreh/pkg/sse"
)

// Server hosts the dashboard endpoints over a running feed.
type Server struct {
	feed         *feed.Feed
	reservations *services.ReservationService

	mu   sync.Mutex
	subs map[chan models.Reservation]struct{}
}

func NewServer(f *feed.Feed, rs *services.ReservationService) *Server {
	s := &Server{
		feed:         f,
		reservations: rs,
		subs:         make(map[chan models.Reservation]struct{}),
	}

	// One listener fans feed updates out to however many SSE clients are
	// connected; per-connection channels come and go with the requests.
	// Vendor alerts ride the same event, queued so delivery never blocks
	// the feed.
	event.Listen("reservation.received", func(payload interface{}) {
		r, ok := payload.(models.Reservation)
		if !ok {
			return
		}
		s.mu.Lock()
		for ch := range s.subs {
			select {
			case ch <- r:
			default:
			}
		}
		s.mu.Unlock()

		if err := queue.Dispatch(&ReservationAlertJob{Reservation: r}); err != nil {
			logger.Warn("dashboard: alert not queued", "error", err)
		}
	})

	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              config.DashboardAddr(),
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard: listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handler() http.Handler {
	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))

	api := r.Group("/api")
	api.Get("/reservations", s.listReservations)
	api.Post("/reservations", s.createReservation)
	api.Get("/orders", s.listOrders)
	api.Get("/events", s.streamEvents)
	api.Post("/graphql", s.graphqlHandler())

	r.Handle("/metrics", metrics.Handler())

	return r.Handler()
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

func (s *Server) listReservations(w http.ResponseWriter, r *http.Request) {
	items := s.feed.Items()
	resource.CollectionOf(reservationResource{}, items).
		WithMeta(resource.Map{"count": len(items)}).
		Respond(w)
}

// createReservation forwards a booking to the remote API. The dashboard is
// how a vendor registers walk-ins and phone bookings by hand.
func (s *Server) createReservation(w http.ResponseWriter, r *http.Request) {
	var rsv models.Reservation
	errs, err := bind.JSON(r, &rsv)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	created, err := s.reservations.Create(r.Context(), rsv)
	if err != nil {
		if ve, ok := services.AsValidation(err); ok {
			response.ValidationError(w, ve.Fields)
			return
		}
		response.Error(w, http.StatusBadGateway, err.Error())
		return
	}
	response.Created(w, created)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := history.List(100)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	resource.CollectionOf(orderResource{}, orders).Respond(w)
}

// streamEvents pushes live reservations over SSE, with a heartbeat comment
// so idle proxies don't cut the stream.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	stream := sse.New(w, r)
	if stream == nil {
		return
	}

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			stream.Comment("keepalive")
		case rsv := <-ch:
			if err := stream.Send("reservation", rsv); err != nil {
				return
			}
		}
		if stream.IsClosed() {
			return
		}
	}
}

func (s *Server) subscribe() chan models.Reservation {
	ch := make(chan models.Reservation, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan models.Reservation) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}
