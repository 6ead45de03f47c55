package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hearthstone-labs/crm/internal/auth"
	"github.com/hearthstone-labs/crm/internal/schema"
	"github.com/hearthstone-labs/crm/internal/services/crm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authenticatorFunc func(ctx context.Context, r *http.Request) (*auth.Principal, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, r *http.Request) (*auth.Principal, error) {
	return f(ctx, r)
}

func acceptAs(subject string, roles ...string) auth.Authenticator {
	return authenticatorFunc(func(context.Context, *http.Request) (*auth.Principal, error) {
		return &auth.Principal{Subject: subject, Roles: roles}, nil
	})
}

var rejectAll = authenticatorFunc(func(context.Context, *http.Request) (*auth.Principal, error) {
	return nil, auth.ErrNoCredentials
})

func newValidator(t *testing.T) *schema.Validator {
	t.Helper()
	v, err := schema.NewValidator(8)
	require.NoError(t, err)
	return v
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChain_OrderAndShortCircuit(t *testing.T) {
	var calls []string
	guard := func(name string, err error) Guard {
		return func(r *http.Request) (*http.Request, error) {
			calls = append(calls, name)
			return r, err
		}
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls = append(calls, "handler")
		w.WriteHeader(http.StatusNoContent)
	})

	rec := serve(t, Chain(guard("a", nil), guard("b", nil))(handler), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"a", "b", "handler"}, calls)

	calls = nil
	rec = serve(t, Chain(guard("a", errors.New("boom")), guard("b", nil))(handler), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	assert.Equal(t, []string{"a"}, calls)
}

func TestAuthenticate(t *testing.T) {
	var seen *auth.Principal
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.PrincipalFromContext(r.Context())
	})

	rec := serve(t, Chain(Authenticate(acceptAs("user-1", "agent")))(handler), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.Subject)

	seen = nil
	rec = serve(t, Chain(Authenticate(rejectAll))(handler), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
	assert.Nil(t, seen)
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name           string
		guards         []Guard
		expectedStatus int
		expectedBody   string
	}{
		{name: "no principal", guards: []Guard{RequireRole(auth.RoleAgent)}, expectedStatus: http.StatusUnauthorized, expectedBody: `{"message":"Unauthorized"}`},
		{name: "matching role", guards: []Guard{Authenticate(acceptAs("u", "agent")), RequireRole(auth.RoleAgent, auth.RoleAdmin)}, expectedStatus: http.StatusOK},
		{name: "missing role", guards: []Guard{Authenticate(acceptAs("u", "agent")), RequireRole(auth.RoleAdmin)}, expectedStatus: http.StatusForbidden, expectedBody: `{"message":"Forbidden"}`},
		{name: "empty required set", guards: []Guard{Authenticate(acceptAs("u")), RequireRole()}, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, Chain(tt.guards...)(ok), http.MethodGet, "/", "")
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
		})
	}
}

type errorResponse struct {
	Error   string             `json:"error"`
	Details []schema.Violation `json:"details"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestValidateBody(t *testing.T) {
	v := newValidator(t)

	var got crm.ClientInput
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = Body[crm.ClientInput](r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusCreated)
	})
	h := Chain(ValidateBody[crm.ClientInput](v, schema.ClientCreate))(handler)

	rec := serve(t, h, http.MethodPost, "/", `{"type":"buyer","firstName":"Jane","lastName":"Doe","email":"jane@example.com","leadScore":"42"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got.LeadScore)
	assert.Equal(t, 42, *got.LeadScore)
	assert.Equal(t, "Jane", *got.FirstName)

	rec = serve(t, h, http.MethodPost, "/", `{"type":"buyer","lastName":"Doe","email":"jane@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Validation failed", body.Error)
	assert.Equal(t, []schema.Violation{{Field: "firstName", Message: "Required"}}, body.Details)

	rec = serve(t, h, http.MethodPost, "/", `{"type":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body = decodeError(t, rec)
	assert.Equal(t, "Validation failed", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "body", body.Details[0].Field)

	rec = serve(t, h, http.MethodPost, "/", ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decodeError(t, rec).Details, 4)
}

func TestValidateBody_ValueOutOfRange(t *testing.T) {
	h := Chain(ValidateBody[crm.ClientInput](newValidator(t), schema.ClientUpdate))(http.NotFoundHandler())

	rec := serve(t, h, http.MethodPut, "/", `{"notes":"ok","leadScore":99999999999999999999}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Validation failed", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "leadScore", body.Details[0].Field)
}

func TestValidateBody_TooLarge(t *testing.T) {
	h := Chain(ValidateBody[crm.ClientInput](newValidator(t), schema.ClientUpdate))(http.NotFoundHandler())

	rec := serve(t, h, http.MethodPut, "/", `{"notes":"`+strings.Repeat("x", MaxBodyBytes)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateQuery(t *testing.T) {
	v := newValidator(t)

	var got crm.PageParams
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = Query[crm.PageParams](r.Context())
	})
	h := Chain(ValidateQuery[crm.PageParams](v, schema.Pagination))(handler)

	rec := serve(t, h, http.MethodGet, "/?page=2&limit=5&sort=name", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, crm.PageParams{Page: 2, Limit: 5}, got)

	got = crm.PageParams{}
	rec = serve(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, crm.PageParams{}, got)

	rec = serve(t, h, http.MethodGet, "/?page=0&limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Query validation failed", body.Error)
	require.Len(t, body.Details, 2)
	assert.Equal(t, "limit", body.Details[0].Field)
	assert.Equal(t, "page", body.Details[1].Field)
}

func TestGateOrder_AuthBeforeValidation(t *testing.T) {
	v := newValidator(t)
	h := Chain(
		Authenticate(rejectAll),
		RequireRole(auth.RoleAgent),
		ValidateBody[crm.ClientInput](v, schema.ClientCreate),
	)(http.NotFoundHandler())

	// Unauthenticated callers never see schema details.
	rec := serve(t, h, http.MethodPost, "/", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	h = Chain(
		Authenticate(acceptAs("u", "viewer")),
		RequireRole(auth.RoleAgent),
		ValidateBody[crm.ClientInput](v, schema.ClientCreate),
	)(http.NotFoundHandler())
	rec = serve(t, h, http.MethodPost, "/", `{}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBodyAndQueryKeysAreDistinct(t *testing.T) {
	ctx := context.WithValue(context.Background(), bodyKey[crm.PageParams]{}, crm.PageParams{Page: 9})

	_, ok := Query[crm.PageParams](ctx)
	assert.False(t, ok)
	_, ok = Body[crm.ClientInput](ctx)
	assert.False(t, ok)

	got, ok := Body[crm.PageParams](ctx)
	assert.True(t, ok)
	assert.Equal(t, 9, got.Page)
}
