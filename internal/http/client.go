package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

// TransportError is a request that never produced a response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed %s %s with error=%s", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non 2xx response; Message is the server's human readable message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with statusCode=%d message=%s", e.StatusCode, e.Message)
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// Client calls the storefront json api and unwraps its response envelope.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Do sends body as json and decodes the envelope's data into out when out is not nil.
// A cancelled c is returned as is.
func (cl *Client) Do(
	c context.Context,
	method string,
	path string,
	token string,
	body interface{},
	out interface{},
) error {
	c, span := otel.Tracer.Start(c, "Client Do")
	defer span.End()

	url := cl.baseURL + path
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Client Do").
		Str(constants.KEY_REQUEST_METHOD, method).
		Str(constants.KEY_REQUEST_URL, url).
		Logger()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			err = fmt.Errorf("failed marshaling request body with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(c, method, url, reader)
	if err != nil {
		err = &TransportError{Method: method, URL: url, Err: err}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if body != nil {
		req.Header.Set(KEY_HEADER_CONTENT_TYPE, VALUE_HEADER_APPLICATION_JSON)
	}
	if token != "" {
		req.Header.Set(KEY_HEADER_AUTHORIZATION, VALUE_BEARER_PREFIX+token)
	}
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(KEY_HEADER_REQUEST_ID, requestID)
	}

	logger.Trace().Msg("sending request")
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		if c.Err() != nil {
			return c.Err()
		}
		err = &TransportError{Method: method, URL: url, Err: err}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()
	logger = logger.With().Int("statusCode", resp.StatusCode).Logger()
	logger.Trace().Msg("received response")

	res := envelope{}
	decodeErr := json.NewDecoder(resp.Body).Decode(&res)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := res.Message
		if decodeErr != nil || message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		err = &APIError{StatusCode: resp.StatusCode, Message: message}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if decodeErr != nil {
		if c.Err() != nil {
			return c.Err()
		}
		err = &TransportError{
			Method: method,
			URL:    url,
			Err:    fmt.Errorf("failed decoding response body with error=%w", decodeErr),
		}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if out == nil || len(res.Data) == 0 {
		return nil
	}
	if err = json.Unmarshal(res.Data, out); err != nil {
		err = &TransportError{
			Method: method,
			URL:    url,
			Err:    fmt.Errorf("failed decoding response data with error=%w", err),
		}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}
