// internal/clients/catalog_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"libracatalog/internal/catalog"
	"libracatalog/internal/httpx"
	"libracatalog/pkg/eventstore"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// ErrInvalidRequest is returned when the catalog rejects a request as
// malformed or illegal for the book.
var ErrInvalidRequest = errors.New("catalog rejected request")

// CatalogClient calls the catalog service over HTTP.
type CatalogClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewCatalogClient returns a client for the catalog at baseURL. A nil
// httpClient gets a default with a 10 second timeout.
func NewCatalogClient(baseURL string, httpClient *http.Client) *CatalogClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &CatalogClient{
		baseURL: baseURL,
		http:    httpClient,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "catalog",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// The catalog answering 4xx is a healthy catalog.
			IsSuccessful: func(err error) bool {
				var se *statusError
				return err == nil || (errors.As(err, &se) && se.code < http.StatusInternalServerError)
			},
		}),
	}
}

func (c *CatalogClient) GetBook(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	var book catalog.Book
	if err := c.do(ctx, http.MethodGet, "/books/"+id.String(), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *CatalogClient) SetBookStatus(ctx context.Context, id uuid.UUID, status catalog.BookStatus) (*catalog.Book, error) {
	body := struct {
		Status catalog.BookStatus `json:"status"`
	}{Status: status}

	var book catalog.Book
	if err := c.do(ctx, http.MethodPut, "/books/"+id.String()+"/status", body, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *CatalogClient) RecordCheckout(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	var book catalog.Book
	if err := c.do(ctx, http.MethodPost, "/books/"+id.String()+"/checkouts", nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// ResolveCategory asks the catalog for the canonical form of label.
func (c *CatalogClient) ResolveCategory(ctx context.Context, label string) (catalog.Category, error) {
	var category catalog.Category
	path := "/categories/resolve?label=" + url.QueryEscape(label)
	if err := c.do(ctx, http.MethodGet, path, nil, &category); err != nil {
		return catalog.Category{}, err
	}
	return category, nil
}

// statusError is a non-2xx answer from the catalog. It unwraps to the
// catalog error named by the response code and to the error implied by the
// HTTP status.
type statusError struct {
	code    int
	message string
	kinds   []error
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog returned %d: %s", e.code, e.message)
}

func (e *statusError) Unwrap() []error { return e.kinds }

func (c *CatalogClient) do(ctx context.Context, method, path string, in, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, in, out)
	})
	return err
}

func (c *CatalogClient) roundTrip(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload httpx.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err != nil || payload.Error == "" {
		payload.Error = http.StatusText(resp.StatusCode)
	}

	se := &statusError{code: resp.StatusCode, message: payload.Error}
	if kind := catalog.ErrorForCode(payload.Code); kind != nil {
		se.kinds = append(se.kinds, kind)
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		if len(se.kinds) == 0 {
			se.kinds = append(se.kinds, catalog.ErrBookNotFound)
		}
	case http.StatusConflict:
		se.kinds = append(se.kinds, eventstore.ErrConcurrencyConflict)
	case http.StatusBadRequest:
		se.kinds = append(se.kinds, ErrInvalidRequest)
	}
	return se
}
