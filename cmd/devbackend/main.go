// devbackend is an in-memory stand-in for the RideShare backend, covering the
// HTTP surface the client consumes plus a websocket notify endpoint. It exists
// for local development and manual testing only.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rideshare-app/rideshare-client/internal/platform/config"
	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
)

type account struct {
	Email    string
	Age      int
	Gender   string
	Password string
}

type trip struct {
	ID         int64
	OwnerEmail string
	OriginName string
	TargetName string
	Time       time.Time
}

type backend struct {
	log logger.Logger

	mu         sync.Mutex
	accounts   map[string]account // by email
	tokens     map[string]string  // bearer token -> email
	trips      map[string]*trip   // by owner email
	pushTokens map[string]string  // email -> device token
	nextTripID int64

	upgrader websocket.Upgrader

	connMu sync.Mutex
	conns  []*websocket.Conn
}

func newBackend(log logger.Logger) *backend {
	return &backend{
		log:        log,
		accounts:   make(map[string]account),
		tokens:     make(map[string]string),
		trips:      make(map[string]*trip),
		pushTokens: make(map[string]string),
		nextTripID: 1,
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

func main() {
	cfg := config.Load()
	log := logger.New("devbackend", cfg.LoggerLevel)

	b := newBackend(log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/auth/", b.handleRegister)
	r.Post("/auth/token", b.handleToken)
	r.Post("/auth/update_push_token", b.handleUpdatePushToken)

	r.Post("/trips/post_trips", b.handlePostTrip)
	r.Post("/trips/get_trip_status", b.handleTripStatus)
	r.Post("/trips/fetch_trip", b.handleFetchTrip)
	r.Get("/trips/get_matches", b.handleMatches)
	r.Post("/trips/cancel_trips", b.handleCancelTrip)

	r.Post("/suggestions_routes/suggestions", b.handleSuggestions)
	r.Post("/suggestions_routes/coordinates", b.handleCoordinates)

	r.Get("/notifications/ws", b.handleNotifyWS)

	addr := ":8000"
	log.Info("dev backend listening", logger.String("addr", addr))
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("listen failed", logger.Error(err))
	}
}

func (b *backend) authenticate(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	tok, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return "", false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	email, ok := b.tokens[tok]
	return email, ok
}

func (b *backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Age      int    `json:"age"`
		Gender   string `json:"gender"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[in.Email]; exists {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Account already exists"})
		return
	}
	b.accounts[in.Email] = account{Email: in.Email, Age: in.Age, Gender: in.Gender, Password: in.Password}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Account created"})
}

func (b *backend) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[username]
	if !ok || acct.Password != password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	tok := uuid.NewString()
	b.tokens[tok] = username
	writeJSON(w, http.StatusOK, map[string]string{"access_token": tok, "token_type": "bearer"})
}

func (b *backend) handleUpdatePushToken(w http.ResponseWriter, r *http.Request) {
	email, ok := b.authenticate(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var in struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	b.pushTokens[email] = in.Token
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (b *backend) handlePostTrip(w http.ResponseWriter, r *http.Request) {
	var in struct {
		OriginName  string    `json:"origin_name"`
		TargetName  string    `json:"target_name"`
		Time        time.Time `json:"time"`
		AccessToken string    `json:"access_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	email, ok := b.tokens[in.AccessToken]
	if !ok {
		b.mu.Unlock()
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := b.nextTripID
	b.nextTripID++
	b.trips[email] = &trip{
		ID:         id,
		OwnerEmail: email,
		OriginName: in.OriginName,
		TargetName: in.TargetName,
		Time:       in.Time,
	}
	b.mu.Unlock()

	b.broadcast("refresh")
	writeJSON(w, http.StatusCreated, map[string]int64{"trip_id": id})
}

func (b *backend) handleTripStatus(w http.ResponseWriter, r *http.Request) {
	email, ok := b.authenticate(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	b.mu.Lock()
	_, active := b.trips[email]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, active)
}

func (b *backend) handleFetchTrip(w http.ResponseWriter, r *http.Request) {
	email, ok := b.authenticate(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	b.mu.Lock()
	t, active := b.trips[email]
	b.mu.Unlock()
	if !active {
		http.Error(w, "no active trip", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"trip_id": t.ID})
}

func (b *backend) handleMatches(w http.ResponseWriter, r *http.Request) {
	email, ok := b.authenticate(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if _, err := strconv.ParseInt(r.URL.Query().Get("trip_id"), 10, 64); err != nil {
		http.Error(w, "bad trip_id", http.StatusBadRequest)
		return
	}

	// Every other user's trip is a candidate match in dev.
	type matchOut struct {
		ID          int64  `json:"id"`
		Origin      string `json:"origin"`
		Destination string `json:"destination"`
		Gender      string `json:"gender"`
		Time        string `json:"time"`
	}
	out := []matchOut{}
	b.mu.Lock()
	for owner, t := range b.trips {
		if owner == email {
			continue
		}
		out = append(out, matchOut{
			ID:          t.ID,
			Origin:      t.OriginName,
			Destination: t.TargetName,
			Gender:      b.accounts[owner].Gender,
			Time:        t.Time.Format(time.RFC3339),
		})
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *backend) handleCancelTrip(w http.ResponseWriter, r *http.Request) {
	email, ok := b.authenticate(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	b.mu.Lock()
	delete(b.trips, email)
	b.mu.Unlock()
	b.broadcast("refresh")
	writeJSON(w, http.StatusOK, map[string]string{"message": "cancelled"})
}

var devPlaces = []struct {
	Name    string
	Country string
	Lon     float64
	Lat     float64
}{
	{"Lekki Phase 1", "Nigeria", 3.4737, 6.4478},
	{"Lagos Island", "Nigeria", 3.3958, 6.4541},
	{"Victoria Island", "Nigeria", 3.4219, 6.4281},
	{"Yaba", "Nigeria", 3.3792, 6.5095},
	{"Ikeja", "Nigeria", 3.3375, 6.6018},
}

func (b *backend) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Encoded string `json:"encoded_URI_component"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	query, err := url.QueryUnescape(in.Encoded)
	if err != nil {
		query = in.Encoded
	}
	query = strings.ToLower(query)

	type feature struct {
		Properties struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	features := []feature{}
	for i, p := range devPlaces {
		if !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		var f feature
		f.Properties.ID = fmt.Sprintf("dev-%d", i)
		f.Properties.Name = p.Name
		f.Properties.Country = p.Country
		f.Geometry.Coordinates = []float64{p.Lon, p.Lat}
		features = append(features, f)
		if len(features) == 3 {
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"features": features})
}

func (b *backend) handleCoordinates(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Coordinates [][]float64 `json:"coordinates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in.Coordinates) < 2 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	start, end := in.Coordinates[0], in.Coordinates[len(in.Coordinates)-1]

	// Straight line, duration from haversine distance at ~40 km/h city speed.
	const steps = 10
	coords := make([][]float64, 0, steps+1)
	for i := 0; i <= steps; i++ {
		f := float64(i) / steps
		coords = append(coords, []float64{
			start[0] + (end[0]-start[0])*f,
			start[1] + (end[1]-start[1])*f,
		})
	}
	km := haversineKm(start[1], start[0], end[1], end[0])
	duration := km / 40 * 3600

	writeJSON(w, http.StatusOK, map[string]any{"coordinates": coords, "duration": duration})
}

func (b *backend) handleNotifyWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	b.connMu.Lock()
	b.conns = append(b.conns, conn)
	b.connMu.Unlock()
}

func (b *backend) broadcast(msg string) {
	b.connMu.Lock()
	defer b.connMu.Unlock()
	alive := b.conns[:0]
	for _, conn := range b.conns {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			_ = conn.Close()
			continue
		}
		alive = append(alive, conn)
	}
	b.conns = alive
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
