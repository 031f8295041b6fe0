// Package graphql defines the API schema and its resolvers.
//
// Relationship fields (a book's author, a list's books, ...) resolve lazily:
// each requested field issues its own lookup, independent of any sibling
// field, so a caller may request any subset of fields and get correct results
// for exactly that subset.
package graphql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/database/catalog"
	"github.com/shelfmark/shelfmark/internal/database/lists"
	"github.com/shelfmark/shelfmark/internal/database/readers"
	"github.com/shelfmark/shelfmark/internal/database/reviews"
	"github.com/shelfmark/shelfmark/internal/entities"
)

var ErrInvalidID = errors.New("invalid id")

// Resolver bundles the stores the schema resolves against.
type Resolver struct {
	Catalog  *catalog.Repository
	Lists    *lists.Repository
	Reviews  *reviews.Repository
	Readers  *readers.Repository
	Auth     *auth.Service
	Sessions *auth.SessionManager // nil when sessions are disabled

	validate *validator.Validate
}

// NewResolver creates a resolver over the given stores.
func NewResolver(
	cat *catalog.Repository,
	lst *lists.Repository,
	rev *reviews.Repository,
	rdr *readers.Repository,
	authService *auth.Service,
	sessions *auth.SessionManager,
) *Resolver {
	return &Resolver{
		Catalog:  cat,
		Lists:    lst,
		Reviews:  rev,
		Readers:  rdr,
		Auth:     authService,
		Sessions: sessions,
		validate: validator.New(),
	}
}

// requireAdmin resolves the caller-supplied reader id and checks the catalog
// management capability. It runs before any store mutation; on failure the
// operation aborts untouched.
func (r *Resolver) requireAdmin(idArg interface{}) (*entities.Reader, error) {
	id, err := parseID(idArg)
	if err != nil {
		return nil, auth.ErrUnauthorized
	}
	reader, err := r.Readers.GetReaderByID(id)
	if err != nil {
		return nil, auth.ErrUnauthorized
	}
	if err := auth.RequireCapability(reader, auth.CapManageCatalog); err != nil {
		return nil, err
	}
	return reader, nil
}

type contextKey string

const requestContextKey contextKey = "http_request"

// WithRequest attaches the HTTP request to the resolver context so mutations
// can establish sessions.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestContextKey, r)
}

func requestFrom(ctx context.Context) *http.Request {
	r, _ := ctx.Value(requestContextKey).(*http.Request)
	return r
}

// parseID coerces a GraphQL ID argument into a store key.
func parseID(arg interface{}) (uint, error) {
	s, ok := arg.(string)
	if !ok {
		return 0, ErrInvalidID
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return uint(id), nil
}

// parseIDList coerces an optional [ID] argument. Absent or empty lists mean
// "no filter" and come back as nil.
func parseIDList(arg interface{}) ([]uint, error) {
	if arg == nil {
		return nil, nil
	}
	raw, ok := arg.([]interface{})
	if !ok {
		return nil, ErrInvalidID
	}
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(raw))
	for _, item := range raw {
		id, err := parseID(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
