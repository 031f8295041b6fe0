package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shelfmark/shelfmark/internal/database/catalog"
	"github.com/shelfmark/shelfmark/internal/database/lists"
	"github.com/shelfmark/shelfmark/internal/database/readers"
	"github.com/shelfmark/shelfmark/internal/logger"
)

// NewSchema builds the executable schema over the resolver's stores.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	t := r.buildTypes()

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: t.reader,
				Args: graphql.FieldConfigArgument{
					"id_reader": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := parseID(p.Args["id_reader"])
					if err != nil {
						return nil, err
					}
					reader, err := r.Readers.GetReaderByID(id)
					if errors.Is(err, readers.ErrReaderNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return reader, nil
				},
			},
			"reader": &graphql.Field{
				Type: t.reader,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					username := p.Args["username"].(string)
					reader, err := r.Readers.GetReaderByUsername(username)
					if errors.Is(err, readers.ErrReaderNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return reader, nil
				},
			},
			"book": &graphql.Field{
				Type: t.book,
				Args: graphql.FieldConfigArgument{
					"id_book": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := parseID(p.Args["id_book"])
					if err != nil {
						return nil, err
					}
					book, err := r.Catalog.GetBookByID(id)
					if errors.Is(err, catalog.ErrBookNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return book, nil
				},
			},
			"books": &graphql.Field{
				Type: graphql.NewNonNull(t.paginatedBooks),
				Args: graphql.FieldConfigArgument{
					"page":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"count":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"id_authors": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					page := p.Args["page"].(int)
					count := p.Args["count"].(int)
					authorIDs, err := parseIDList(p.Args["id_authors"])
					if err != nil {
						return nil, err
					}
					books, totalPages, err := r.Catalog.PageBooks(page, count, authorIDs)
					if err != nil {
						return nil, err
					}
					return paginatedBooks{TotalPages: totalPages, Books: books}, nil
				},
			},
			"author": &graphql.Field{
				Type: t.author,
				Args: graphql.FieldConfigArgument{
					"id_author": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := parseID(p.Args["id_author"])
					if err != nil {
						return nil, err
					}
					author, err := r.Catalog.GetAuthorByID(id)
					if errors.Is(err, catalog.ErrAuthorNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return author, nil
				},
			},
			"list": &graphql.Field{
				Type: t.list,
				Args: graphql.FieldConfigArgument{
					"id_list": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := parseID(p.Args["id_list"])
					if err != nil {
						return nil, err
					}
					list, err := r.Lists.GetListByID(id)
					if errors.Is(err, lists.ErrListNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return list, nil
				},
			},
			"search_books": &graphql.Field{
				Type: graphql.NewNonNull(t.paginatedBooks),
				Args: graphql.FieldConfigArgument{
					"term":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"page":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"count":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"id_authors": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					term := p.Args["term"].(string)
					page := p.Args["page"].(int)
					count := p.Args["count"].(int)
					authorIDs, err := parseIDList(p.Args["id_authors"])
					if err != nil {
						return nil, err
					}
					books, totalPages, err := r.Catalog.SearchBooks(term, page, count, authorIDs)
					if err != nil {
						return nil, err
					}
					return paginatedBooks{TotalPages: totalPages, Books: books}, nil
				},
			},
			"user_reviews": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t.review))),
				Args: graphql.FieldConfigArgument{
					"id_reader": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := parseID(p.Args["id_reader"])
					if err != nil {
						return nil, err
					}
					return r.Reviews.GetReviewsForReader(id)
				},
			},
		},
	})

	mutation := r.buildMutation(t)

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	if err != nil {
		logger.Get().Error().Err(err).Msg("failed to build schema")
		return graphql.Schema{}, err
	}
	return schema, nil
}
