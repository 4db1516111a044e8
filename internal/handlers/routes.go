package handlers

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, fh *FlightHandler, bh *BookingHandler, sh *SearchHandler, ah *AirportHandler) {
	r.Route("/api/flights", func(r chi.Router) {
		r.Post("/", fh.ScheduleFlight)
		r.Get("/{id}", fh.GetFlight)
		r.Post("/{id}/reschedule", fh.Reschedule)
		r.Post("/{id}/status", fh.ChangeStatus)
		r.Post("/{id}/pricing", fh.UpdatePricing)
		r.Post("/{id}/aircraft", fh.ReassignAircraft)
		r.Delete("/{id}", fh.DeleteFlight)
	})

	r.Route("/api/itineraries", func(r chi.Router) {
		r.Post("/", bh.CreateItinerary)
		r.Get("/{id}", bh.GetItinerary)
	})

	r.Post("/api/bookings/{id}/cancel", bh.CancelBooking)

	r.Get("/api/search", sh.Search)
	r.Get("/api/airports/{iata}", ah.GetAirport)
}
