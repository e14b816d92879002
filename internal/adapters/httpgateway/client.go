package httpgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rideshare-app/rideshare-client/internal/domain"
	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
	"github.com/rideshare-app/rideshare-client/internal/ports/out/credstore"
	"github.com/rideshare-app/rideshare-client/internal/ports/out/gateway"
)

// Client implements the gateway port over plain HTTP. Every request reads the
// credential store at send time and attaches a bearer header when a credential
// is present. No retries happen here; network timeouts rely on transport
// defaults.
type Client struct {
	base  string
	http  *http.Client
	creds credstore.Store
	log   logger.Logger
}

func NewClient(baseURL string, creds credstore.Store, log logger.Logger) *Client {
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		http:  &http.Client{},
		creds: creds,
		log:   log,
	}
}

func (c *Client) RegisterAccount(ctx context.Context, in gateway.RegisterAccountInput) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.send(ctx, http.MethodPost, "/auth/", in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (gateway.Credentials, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return gateway.Credentials{}, &gateway.Error{Kind: gateway.KindNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out gateway.Credentials
	if err := c.do(req, &out); err != nil {
		return gateway.Credentials{}, err
	}
	return out, nil
}

func (c *Client) UpdatePushToken(ctx context.Context, token string) error {
	body := map[string]string{"token": token}
	return c.send(ctx, http.MethodPost, "/auth/update_push_token", body, nil)
}

func (c *Client) PostTrip(ctx context.Context, req domain.TripRequest) error {
	return c.send(ctx, http.MethodPost, "/trips/post_trips", req, nil)
}

func (c *Client) TripStatus(ctx context.Context) (bool, error) {
	var raw json.RawMessage
	if err := c.send(ctx, http.MethodPost, "/trips/get_trip_status", nil, &raw); err != nil {
		return false, err
	}
	return truthy(raw), nil
}

func (c *Client) FetchTrip(ctx context.Context) (domain.TripID, error) {
	var out struct {
		TripID domain.TripID `json:"trip_id"`
	}
	if err := c.send(ctx, http.MethodPost, "/trips/fetch_trip", nil, &out); err != nil {
		return 0, err
	}
	return out.TripID, nil
}

func (c *Client) Matches(ctx context.Context, tripID domain.TripID) ([]domain.Match, error) {
	path := "/trips/get_matches?trip_id=" + strconv.FormatInt(int64(tripID), 10)
	var out []domain.Match
	if err := c.send(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelTrip(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/trips/cancel_trips", nil, nil)
}

func (c *Client) Suggestions(ctx context.Context, query string) ([]domain.Suggestion, error) {
	body := map[string]string{"encoded_URI_component": encodeURIComponent(query)}

	var out struct {
		Features []struct {
			Properties struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Country string `json:"country"`
			} `json:"properties"`
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := c.send(ctx, http.MethodPost, "/suggestions_routes/suggestions", body, &out); err != nil {
		return nil, err
	}

	suggestions := make([]domain.Suggestion, 0, len(out.Features))
	for _, f := range out.Features {
		s := domain.Suggestion{
			ID:    f.Properties.ID,
			Name:  f.Properties.Name,
			Place: f.Properties.Country,
		}
		if len(f.Geometry.Coordinates) >= 2 {
			s.Coordinates = domain.Coord{Latitude: f.Geometry.Coordinates[1], Longitude: f.Geometry.Coordinates[0]}
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

func (c *Client) Route(ctx context.Context, origin, destination domain.Coord) (gateway.Route, error) {
	body := map[string][][]float64{
		"coordinates": {
			{origin.Longitude, origin.Latitude},
			{destination.Longitude, destination.Latitude},
		},
	}

	var out struct {
		Coordinates [][]float64 `json:"coordinates"`
		Duration    float64     `json:"duration"`
	}
	if err := c.send(ctx, http.MethodPost, "/suggestions_routes/coordinates", body, &out); err != nil {
		return gateway.Route{}, err
	}

	coords := make([]domain.Coord, 0, len(out.Coordinates))
	for _, pair := range out.Coordinates {
		if len(pair) < 2 {
			continue
		}
		coords = append(coords, domain.Coord{Latitude: pair[1], Longitude: pair[0]})
	}
	return gateway.Route{Coordinates: coords, DurationSeconds: out.Duration}, nil
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &gateway.Error{Kind: gateway.KindNetwork, Message: "encode request: " + err.Error()}
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return &gateway.Error{Kind: gateway.KindNetwork, Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if tok, err := c.creds.Get(req.Context()); err != nil {
		c.log.Warn("credential read failed", logger.Error(err))
	} else if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &gateway.Error{Kind: gateway.KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorBody(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return &gateway.Error{Kind: gateway.KindUnauthorized, Status: resp.StatusCode, Message: msg}
		case http.StatusNotFound:
			return &gateway.Error{Kind: gateway.KindNotFound, Status: resp.StatusCode, Message: msg}
		default:
			return &gateway.Error{Kind: gateway.KindNetwork, Status: resp.StatusCode, Message: msg}
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &gateway.Error{Kind: gateway.KindNetwork, Message: "decode response: " + err.Error()}
	}
	return nil
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		return "request failed"
	}
	return msg
}

// truthy evaluates the boolean-ish trip-status response.
func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return v != nil
	}
}

// encodeURIComponent mirrors the JS function of the same name: query-escaped with
// spaces as %20 rather than +.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

var _ gateway.Client = (*Client)(nil)
