package main

import (
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"time"
)

// Simulated scene: own vessel drifting slowly north-east out of a Solent
// anchorage, one crossing ferry and one slow overtaken coaster nearby.

type ownVessel struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Course    float64 `json:"course"`
}

type target struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Course    float64 `json:"course"`
	ShipType  string  `json:"ship_type"`
	Callsign  string  `json:"callsign"`
}

var bootTime = time.Now()

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/vessel/self", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		// Drift about 0.5 m/s north-east so the anchor alarm trips after a
		// couple of minutes.
		elapsed := time.Since(bootTime).Seconds()
		drift := 0.5 * elapsed
		writeJSON(w, ownVessel{
			Latitude:  50.7680 + drift*math.Cos(math.Pi/4)/111320.0,
			Longitude: -1.2910 + drift*math.Sin(math.Pi/4)/(111320.0*math.Cos(50.768*math.Pi/180)),
			Speed:     0.9,
			Course:    45,
		})
	})

	mux.HandleFunc("/api/v1/vessel/targets", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string]any{
			"targets": []target{
				{
					ID:        "urn:mrn:imo:mmsi:235123456",
					Name:      "RED OSPREY",
					Latitude:  50.7540,
					Longitude: -1.3240,
					Speed:     12.5,
					Course:    62,
					ShipType:  "passenger",
					Callsign:  "MABC3",
				},
				{
					ID:        "urn:mrn:imo:mmsi:235987654",
					Name:      "SOLENT TRADER",
					Latitude:  50.7725,
					Longitude: -1.2980,
					Speed:     4.0,
					Course:    48,
					ShipType:  "cargo",
					Callsign:  "MXYZ7",
				},
			},
		})
	})

	mux.HandleFunc("/api/v1/notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
		log.Printf("notification received: %s", body)
		w.WriteHeader(http.StatusNoContent)
	})

	logger := log.New(log.Writer(), "bus-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":9090",
		Handler: logRequests(logger, mux),
	}

	logger.Println("listening on :9090")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
