package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/searchresult"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/letmevibethatforyou/searchresult/functions/summarize-hits")

type summary struct {
	Results *searchresult.Results           `json:"results"`
	Facets  map[string][]searchresult.Facet `json:"facets,omitempty"`
}

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Handler serves API Gateway requests whose body is a raw search response.
type Handler struct {
	registry *searchresult.FacetRegistry
}

// NewHandler returns a Handler that builds facets from registry, or from
// searchresult.DefaultFacetRegistry when registry is nil.
func NewHandler(registry *searchresult.FacetRegistry) *Handler {
	if registry == nil {
		registry = searchresult.DefaultFacetRegistry
	}
	return &Handler{registry: registry}
}

// HandleRequest summarizes the search response posted as the request body.
func (h *Handler) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, span := tracer.Start(ctx, "summarize-hits", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return h.fail(ctx, span, http.StatusBadRequest, errors.Wrap(err, "failed to decode request body"))
		}
		body = decoded
	}

	opts := []searchresult.Option{searchresult.WithFacetRegistry(h.registry)}
	if path := strings.Trim(req.QueryStringParameters["path"], "/"); path != "" {
		opts = append(opts, searchresult.WithPath(strings.Split(path, "/")...))
	}
	if raw := req.QueryStringParameters["status"]; raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil {
			return h.fail(ctx, span, http.StatusBadRequest, errors.Wrapf(err, "invalid status %q", raw))
		}
		opts = append(opts, searchresult.WithResponseCode(code))
	}

	res, err := searchresult.Parse(body, opts...)
	if err != nil {
		return h.fail(ctx, span, statusFor(err), err)
	}
	if !res.Succeeded() {
		return h.engineFailure(ctx, span, res)
	}

	results, err := res.Results()
	if err != nil {
		return h.fail(ctx, span, statusFor(err), err)
	}
	out := summary{Results: results}

	if raw := req.QueryStringParameters["facet"]; raw != "" {
		out.Facets = make(map[string][]searchresult.Facet)
		for _, typ := range strings.Split(raw, ",") {
			typ = strings.TrimSpace(typ)
			if typ == "" {
				continue
			}
			facets, err := res.Facets(typ)
			if err != nil {
				return h.fail(ctx, span, statusFor(err), err)
			}
			out.Facets[typ] = facets
		}
	}

	span.SetAttributes(
		attribute.Int("searchresult.hits", len(results.Items)),
		attribute.Int64("searchresult.total", results.Total),
		attribute.Int("searchresult.facet_types", len(out.Facets)),
	)
	slog.InfoContext(ctx, "Summarized search response", "hits", len(results.Items), "total", results.Total)

	return respond(http.StatusOK, out)
}

func (h *Handler) fail(ctx context.Context, span trace.Span, status int, err error) (events.APIGatewayProxyResponse, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	details := errors.GetAllDetails(err)
	slog.WarnContext(ctx, "Failed to summarize search response", "status", status, "error", err, "details", details)
	return respond(status, errorBody{Error: err.Error(), Details: details})
}

// engineFailure answers with the engine's own error instead of mapping hits.
func (h *Handler) engineFailure(ctx context.Context, span trace.Span, res *searchresult.SearchResult) (events.APIGatewayProxyResponse, error) {
	msg, ok := res.ErrorMessage()
	if !ok {
		msg = "search engine reported a failure"
	}
	status := engineStatus(res)

	span.SetStatus(codes.Error, msg)
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	slog.WarnContext(ctx, "Search engine reported a failure", "status", status, "error", msg)
	return respond(status, errorBody{Error: msg})
}

// engineStatus picks the status to answer an engine failure with: the recorded
// response code, then the body's "status" field, then 502.
func engineStatus(res *searchresult.SearchResult) int {
	if code := res.ResponseCode(); code >= 400 && code <= 599 {
		return code
	}
	var envelope struct {
		Status int `json:"status"`
	}
	if err := sonic.ConfigStd.Unmarshal(res.Raw(), &envelope); err == nil && envelope.Status >= 400 && envelope.Status <= 599 {
		return envelope.Status
	}
	return http.StatusBadGateway
}

// statusFor maps mapping failures to HTTP statuses: bad input is a 400, a
// well-formed document of the wrong shape is a 422.
func statusFor(err error) int {
	switch {
	case errors.Is(err, searchresult.ErrInvalidDocument), errors.Is(err, searchresult.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, searchresult.ErrMalformedPath),
		errors.Is(err, searchresult.ErrDecode),
		errors.Is(err, searchresult.ErrFacetConstruction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respond(status int, v interface{}) (events.APIGatewayProxyResponse, error) {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed to encode response")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}, nil
}
