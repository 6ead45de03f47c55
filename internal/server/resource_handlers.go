package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hearthstone-labs/crm/internal/apierr"
	"github.com/hearthstone-labs/crm/internal/auth"
	crmmiddleware "github.com/hearthstone-labs/crm/internal/middleware"
	"github.com/hearthstone-labs/crm/internal/schema"
	"github.com/hearthstone-labs/crm/internal/services/crm"
)

// ResourceService is what the resource handlers need from a service.
// *crm.ClientService and *crm.TransactionService satisfy it.
type ResourceService[T any, In any] interface {
	List(ctx context.Context, ownerID string, params crm.PageParams) (*crm.Page[T], error)
	Create(ctx context.Context, ownerID string, in In) (*T, error)
	Get(ctx context.Context, ownerID, id string) (*T, error)
	Update(ctx context.Context, ownerID, id string, in In) (*T, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ResourceSchemas are the body schemas of one resource.
type ResourceSchemas struct {
	Create schema.Schema
	Update schema.Schema
}

// Gates are the collaborators the per-route guards use.
type Gates struct {
	Authenticator auth.Authenticator
	Validator     *schema.Validator
}

// MountResource registers the five CRUD routes of a resource under pattern:
//
//	GET    /       list    auth, query
//	POST   /       create  auth, agent|admin, body
//	GET    /{id}   get     auth
//	PUT    /{id}   update  auth, agent|admin, body
//	DELETE /{id}   delete  auth, admin
func MountResource[T any, In any](r chi.Router, pattern string, svc ResourceService[T, In], schemas ResourceSchemas, g Gates) {
	h := &resourceHandlers[T, In]{svc: svc}

	authn := crmmiddleware.Authenticate(g.Authenticator)
	writers := crmmiddleware.RequireRole(auth.RoleAgent, auth.RoleAdmin)
	admins := crmmiddleware.RequireRole(auth.RoleAdmin)

	r.Route(pattern, func(r chi.Router) {
		r.With(crmmiddleware.Chain(authn, crmmiddleware.ValidateQuery[crm.PageParams](g.Validator, schema.Pagination))).Get("/", h.list)
		r.With(crmmiddleware.Chain(authn, writers, crmmiddleware.ValidateBody[In](g.Validator, schemas.Create))).Post("/", h.create)
		r.With(crmmiddleware.Chain(authn)).Get("/{id}", h.get)
		r.With(crmmiddleware.Chain(authn, writers, crmmiddleware.ValidateBody[In](g.Validator, schemas.Update))).Put("/{id}", h.update)
		r.With(crmmiddleware.Chain(authn, admins)).Delete("/{id}", h.delete)
	})
}

type resourceHandlers[T any, In any] struct {
	svc ResourceService[T, In]
}

var errMissingGateState = errors.New("request reached handler without gate state")

// owner returns the subject set by the authentication gate.
func owner(r *http.Request) (string, error) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return "", apierr.Unauthenticated(nil)
	}
	return principal.Subject, nil
}

func (h *resourceHandlers[T, In]) list(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		apierr.Write(w, r, err)
		return
	}
	params, _ := crmmiddleware.Query[crm.PageParams](r.Context())

	page, err := h.svc.List(r.Context(), ownerID, params)
	if err != nil {
		apierr.Write(w, r, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, page)
}

func (h *resourceHandlers[T, In]) create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		apierr.Write(w, r, err)
		return
	}
	in, ok := crmmiddleware.Body[In](r.Context())
	if !ok {
		apierr.Write(w, r, errMissingGateState)
		return
	}

	created, err := h.svc.Create(r.Context(), ownerID, in)
	if err != nil {
		apierr.Write(w, r, err)
		return
	}
	apierr.WriteJSON(w, http.StatusCreated, created)
}

func (h *resourceHandlers[T, In]) get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		apierr.Write(w, r, err)
		return
	}

	row, err := h.svc.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		apierr.Write(w, r, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, row)
}

func (h *resourceHandlers[T, In]) update(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		apierr.Write(w, r, err)
		return
	}
	in, ok := crmmiddleware.Body[In](r.Context())
	if !ok {
		apierr.Write(w, r, errMissingGateState)
		return
	}

	row, err := h.svc.Update(r.Context(), ownerID, chi.URLParam(r, "id"), in)
	if err != nil {
		apierr.Write(w, r, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, row)
}

func (h *resourceHandlers[T, In]) delete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		apierr.Write(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		apierr.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
