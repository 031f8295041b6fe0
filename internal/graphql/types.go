package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/shelfmark/shelfmark/internal/entities"
)

// schemaTypes holds the object types for one schema instance. Relationship
// fields are attached after construction so the Book/Review/Reader cycle
// resolves.
type schemaTypes struct {
	reader         *graphql.Object
	author         *graphql.Object
	genre          *graphql.Object
	book           *graphql.Object
	list           *graphql.Object
	review         *graphql.Object
	paginatedBooks *graphql.Object
}

func (r *Resolver) buildTypes() *schemaTypes {
	t := &schemaTypes{}

	t.genre = graphql.NewObject(graphql.ObjectConfig{
		Name: "Genre",
		Fields: graphql.Fields{
			"id_genre": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					genre, err := genreSource(p.Source)
					if err != nil {
						return nil, err
					}
					return genre.ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					genre, err := genreSource(p.Source)
					if err != nil {
						return nil, err
					}
					return genre.Name, nil
				},
			},
		},
	})

	t.reader = graphql.NewObject(graphql.ObjectConfig{
		Name: "Reader",
		Fields: graphql.Fields{
			"id_reader": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					reader, err := readerSource(p.Source)
					if err != nil {
						return nil, err
					}
					return reader.ID, nil
				},
			},
			"username": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					reader, err := readerSource(p.Source)
					if err != nil {
						return nil, err
					}
					return reader.Username, nil
				},
			},
			"pfp": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					reader, err := readerSource(p.Source)
					if err != nil {
						return nil, err
					}
					return nullableString(reader.ProfileImage), nil
				},
			},
		},
	})

	t.author = graphql.NewObject(graphql.ObjectConfig{
		Name: "Author",
		Fields: graphql.Fields{
			"id_author": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					author, err := authorSource(p.Source)
					if err != nil {
						return nil, err
					}
					return author.ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					author, err := authorSource(p.Source)
					if err != nil {
						return nil, err
					}
					return author.Name, nil
				},
			},
			"picture": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					author, err := authorSource(p.Source)
					if err != nil {
						return nil, err
					}
					return nullableString(author.Picture), nil
				},
			},
			"born": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					author, err := authorSource(p.Source)
					if err != nil {
						return nil, err
					}
					return nullableString(author.Born), nil
				},
			},
			"died": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					author, err := authorSource(p.Source)
					if err != nil {
						return nil, err
					}
					return nullableString(author.Died), nil
				},
			},
			"description": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					author, err := authorSource(p.Source)
					if err != nil {
						return nil, err
					}
					return nullableString(author.Description), nil
				},
			},
		},
	})

	t.book = graphql.NewObject(graphql.ObjectConfig{
		Name: "Book",
		Fields: graphql.Fields{
			"id_book": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					book, err := bookSource(p.Source)
					if err != nil {
						return nil, err
					}
					return book.ID, nil
				},
			},
			"title": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					book, err := bookSource(p.Source)
					if err != nil {
						return nil, err
					}
					return book.Title, nil
				},
			},
			"description": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					book, err := bookSource(p.Source)
					if err != nil {
						return nil, err
					}
					return nullableString(book.Description), nil
				},
			},
			"cover_art": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					book, err := bookSource(p.Source)
					if err != nil {
						return nil, err
					}
					return nullableString(book.CoverArt), nil
				},
			},
			"no_pages": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					book, err := bookSource(p.Source)
					if err != nil {
						return nil, err
					}
					if book.PageCount == 0 {
						return nil, nil
					}
					return book.PageCount, nil
				},
			},
			"publishing_date": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					book, err := bookSource(p.Source)
					if err != nil {
						return nil, err
					}
					return nullableString(book.PublishingDate), nil
				},
			},
		},
	})

	t.list = graphql.NewObject(graphql.ObjectConfig{
		Name: "List",
		Fields: graphql.Fields{
			"id_list": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := listSource(p.Source)
					if err != nil {
						return nil, err
					}
					return list.ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := listSource(p.Source)
					if err != nil {
						return nil, err
					}
					return list.Name, nil
				},
			},
		},
	})

	t.review = graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"score": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					review, err := reviewSource(p.Source)
					if err != nil {
						return nil, err
					}
					return review.Score, nil
				},
			},
			"description": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					review, err := reviewSource(p.Source)
					if err != nil {
						return nil, err
					}
					return nullableString(review.Comment), nil
				},
			},
		},
	})

	t.paginatedBooks = graphql.NewObject(graphql.ObjectConfig{
		Name: "PaginatedBooks",
		Fields: graphql.Fields{
			"total_pages": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
			},
			"books": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t.book))),
			},
		},
	})

	r.attachRelationshipFields(t)

	return t
}

// attachRelationshipFields wires the lazily resolved relations. Each resolver
// is an independent lookup against the store keyed by the parent row.
func (r *Resolver) attachRelationshipFields(t *schemaTypes) {
	t.reader.AddFieldConfig("lists", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t.list))),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			reader, err := readerSource(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Lists.GetListsForReader(reader.ID)
		},
	})

	t.author.AddFieldConfig("books", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(t.book)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			author, err := authorSource(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Catalog.GetBooksByAuthor(author.ID)
		},
	})

	t.book.AddFieldConfig("author", &graphql.Field{
		// Every well-formed book has exactly one author
		Type: graphql.NewNonNull(t.author),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			book, err := bookSource(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Catalog.GetAuthorByID(book.AuthorID)
		},
	})

	t.book.AddFieldConfig("genres", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(t.genre)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			book, err := bookSource(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Catalog.GetGenresForBook(book.ID)
		},
	})

	t.book.AddFieldConfig("reviews", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(t.review)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			book, err := bookSource(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Reviews.GetReviewsForBook(book.ID)
		},
	})

	t.book.AddFieldConfig("avg_score", &graphql.Field{
		// Null for a book with no reviews; never 0, never an error
		Type: graphql.Float,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			book, err := bookSource(p.Source)
			if err != nil {
				return nil, err
			}
			avg, err := r.Reviews.GetAverageScore(book.ID)
			if err != nil {
				return nil, err
			}
			if avg == nil {
				return nil, nil
			}
			return *avg, nil
		},
	})

	t.book.AddFieldConfig("no_reviews", &graphql.Field{
		Type: graphql.NewNonNull(graphql.Int),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			book, err := bookSource(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Reviews.GetReviewCount(book.ID)
		},
	})

	t.list.AddFieldConfig("books", &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(t.book)),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			list, err := listSource(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Lists.GetBooksForList(list.ID)
		},
	})

	t.list.AddFieldConfig("no_books", &graphql.Field{
		Type: graphql.NewNonNull(graphql.Int),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			list, err := listSource(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Lists.GetBookCount(list.ID)
		},
	})

	t.review.AddFieldConfig("reader", &graphql.Field{
		Type: graphql.NewNonNull(t.reader),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			review, err := reviewSource(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Readers.GetReaderByID(review.ReaderID)
		},
	})

	t.review.AddFieldConfig("book", &graphql.Field{
		Type: graphql.NewNonNull(t.book),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			review, err := reviewSource(p.Source)
			if err != nil {
				return nil, err
			}
			return r.Catalog.GetBookByID(review.BookID)
		},
	})
}

// paginatedBooks is the pagination result shape shared by books and
// search_books.
type paginatedBooks struct {
	TotalPages int             `json:"total_pages"`
	Books      []entities.Book `json:"books"`
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func bookSource(src interface{}) (entities.Book, error) {
	switch b := src.(type) {
	case entities.Book:
		return b, nil
	case *entities.Book:
		return *b, nil
	}
	return entities.Book{}, fmt.Errorf("unexpected book source %T", src)
}

func readerSource(src interface{}) (entities.Reader, error) {
	switch r := src.(type) {
	case entities.Reader:
		return r, nil
	case *entities.Reader:
		return *r, nil
	}
	return entities.Reader{}, fmt.Errorf("unexpected reader source %T", src)
}

func authorSource(src interface{}) (entities.Author, error) {
	switch a := src.(type) {
	case entities.Author:
		return a, nil
	case *entities.Author:
		return *a, nil
	}
	return entities.Author{}, fmt.Errorf("unexpected author source %T", src)
}

func genreSource(src interface{}) (entities.Genre, error) {
	switch g := src.(type) {
	case entities.Genre:
		return g, nil
	case *entities.Genre:
		return *g, nil
	}
	return entities.Genre{}, fmt.Errorf("unexpected genre source %T", src)
}

func listSource(src interface{}) (entities.List, error) {
	switch l := src.(type) {
	case entities.List:
		return l, nil
	case *entities.List:
		return *l, nil
	}
	return entities.List{}, fmt.Errorf("unexpected list source %T", src)
}

func reviewSource(src interface{}) (entities.Review, error) {
	switch r := src.(type) {
	case entities.Review:
		return r, nil
	case *entities.Review:
		return *r, nil
	}
	return entities.Review{}, fmt.Errorf("unexpected review source %T", src)
}
