package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/logger"
)

// registerPayload carries the register mutation arguments through validation.
type registerPayload struct {
	Username     string `validate:"required,min=3,max=64"`
	Password     string `validate:"required,min=8,max=72"`
	ProfileImage string `validate:"omitempty,url"`
}

// authorPayload carries the add_author arguments through validation.
type authorPayload struct {
	Name        string `validate:"required,max=256"`
	Picture     string `validate:"omitempty,url"`
	Born        string `validate:"max=64"`
	Died        string `validate:"max=64"`
	Description string `validate:"max=10000"`
}

// bookPayload carries the add_book input through validation.
type bookPayload struct {
	Title          string `validate:"required,max=512"`
	Description    string `validate:"max=10000"`
	CoverArt       string `validate:"omitempty,url"`
	PageCount      int    `validate:"gte=0"`
	PublishingDate string `validate:"max=64"`
	AuthorID       uint   `validate:"required"`
}

func (r *Resolver) buildMutation(t *schemaTypes) *graphql.Object {
	bookInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "BookInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"description":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"cover_art":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"no_pages":        &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"publishing_date": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"id_author":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
	})

	bookUpdateInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "BookUpdateInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":           &graphql.InputObjectFieldConfig{Type: graphql.String},
			"description":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"cover_art":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"no_pages":        &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"publishing_date": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"id_author":       &graphql.InputObjectFieldConfig{Type: graphql.ID},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"register": &graphql.Field{
				Type: graphql.NewNonNull(t.reader),
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"pfp":      &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.resolveRegister,
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(t.reader),
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.resolveLogin,
			},
			"logout": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Boolean),
				Resolve: r.resolveLogout,
			},
			"add_book_to_list": &graphql.Field{
				Type: graphql.NewNonNull(t.list),
				Args: graphql.FieldConfigArgument{
					"id_list": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"id_book": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveAddBookToList,
			},
			"remove_book_from_list": &graphql.Field{
				Type: graphql.NewNonNull(t.list),
				Args: graphql.FieldConfigArgument{
					"id_list": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"id_book": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveRemoveBookFromList,
			},
			"review_book": &graphql.Field{
				Type: graphql.NewNonNull(t.review),
				Args: graphql.FieldConfigArgument{
					"id_reader":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"id_book":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"score":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.resolveReviewBook,
			},
			"add_book": &graphql.Field{
				Type: graphql.NewNonNull(t.book),
				Args: graphql.FieldConfigArgument{
					"input":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(bookInput)},
					"id_reader": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveAddBook,
			},
			"update_book": &graphql.Field{
				Type: t.book,
				Args: graphql.FieldConfigArgument{
					"id_book":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(bookUpdateInput)},
					"id_reader": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveUpdateBook,
			},
			"delete_book": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id_book":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"id_reader": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveDeleteBook,
			},
			"add_author": &graphql.Field{
				Type: graphql.NewNonNull(t.author),
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"picture":     &graphql.ArgumentConfig{Type: graphql.String},
					"born":        &graphql.ArgumentConfig{Type: graphql.String},
					"died":        &graphql.ArgumentConfig{Type: graphql.String},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"id_reader":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveAddAuthor,
			},
			"assign_genres": &graphql.Field{
				Type: graphql.NewNonNull(t.book),
				Args: graphql.FieldConfigArgument{
					"id_book":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"genres":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
					"id_reader": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveAssignGenres,
			},
			"delete_review": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id_reader": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"id_book":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveDeleteReview,
			},
		},
	})
}

func (r *Resolver) resolveRegister(p graphql.ResolveParams) (interface{}, error) {
	payload := registerPayload{
		Username: p.Args["username"].(string),
		Password: p.Args["password"].(string),
	}
	if pfp, ok := p.Args["pfp"].(string); ok {
		payload.ProfileImage = pfp
	}
	if err := r.validate.Struct(payload); err != nil {
		return nil, err
	}

	reader, err := r.Auth.Register(payload.Username, payload.Password, payload.ProfileImage)
	if err != nil {
		return nil, err
	}

	r.establishSession(p, reader)
	return reader, nil
}

func (r *Resolver) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	username := p.Args["username"].(string)
	password := p.Args["password"].(string)

	reader, err := r.Auth.Authenticate(username, password)
	if err != nil {
		return nil, err
	}

	r.establishSession(p, reader)
	return reader, nil
}

// resolveLogout destroys the caller's session, reporting whether an
// authenticated session existed. Without sessions it is a no-op.
func (r *Resolver) resolveLogout(p graphql.ResolveParams) (interface{}, error) {
	if r.Sessions == nil {
		return false, nil
	}
	req := requestFrom(p.Context)
	if req == nil {
		return false, nil
	}
	if !r.Sessions.IsAuthenticated(req) {
		return false, nil
	}
	if err := r.Sessions.DestroySession(req); err != nil {
		return nil, err
	}
	return true, nil
}

// establishSession records the reader in the HTTP session when one is
// available. GraphQL execution outside an HTTP request (tests) skips it.
func (r *Resolver) establishSession(p graphql.ResolveParams, reader *entities.Reader) {
	if r.Sessions == nil {
		return
	}
	req := requestFrom(p.Context)
	if req == nil {
		return
	}
	if err := r.Sessions.CreateSession(req, reader); err != nil {
		logger.Get().Error().Err(err).Uint("reader_id", reader.ID).Msg("failed to create session")
	}
}

func (r *Resolver) resolveAddBookToList(p graphql.ResolveParams) (interface{}, error) {
	listID, err := parseID(p.Args["id_list"])
	if err != nil {
		return nil, err
	}
	bookID, err := parseID(p.Args["id_book"])
	if err != nil {
		return nil, err
	}
	if _, err := r.Catalog.GetBookByID(bookID); err != nil {
		return nil, err
	}
	if err := r.Lists.AddBookToList(listID, bookID); err != nil {
		return nil, err
	}
	return r.Lists.GetListByID(listID)
}

func (r *Resolver) resolveRemoveBookFromList(p graphql.ResolveParams) (interface{}, error) {
	listID, err := parseID(p.Args["id_list"])
	if err != nil {
		return nil, err
	}
	bookID, err := parseID(p.Args["id_book"])
	if err != nil {
		return nil, err
	}
	// Removing an absent membership is not an error
	if _, err := r.Lists.RemoveBookFromList(listID, bookID); err != nil {
		return nil, err
	}
	return r.Lists.GetListByID(listID)
}

func (r *Resolver) resolveReviewBook(p graphql.ResolveParams) (interface{}, error) {
	readerID, err := parseID(p.Args["id_reader"])
	if err != nil {
		return nil, err
	}
	bookID, err := parseID(p.Args["id_book"])
	if err != nil {
		return nil, err
	}
	score := p.Args["score"].(int)
	comment, _ := p.Args["description"].(string)

	if _, err := r.Readers.GetReaderByID(readerID); err != nil {
		return nil, err
	}
	if _, err := r.Catalog.GetBookByID(bookID); err != nil {
		return nil, err
	}

	return r.Reviews.UpsertReview(readerID, bookID, score, comment)
}

func (r *Resolver) resolveAddBook(p graphql.ResolveParams) (interface{}, error) {
	if _, err := r.requireAdmin(p.Args["id_reader"]); err != nil {
		return nil, err
	}

	input, ok := p.Args["input"].(map[string]interface{})
	if !ok {
		return nil, ErrInvalidID
	}
	payload, err := parseBookPayload(input)
	if err != nil {
		return nil, err
	}
	if err := r.validate.Struct(payload); err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:          payload.Title,
		Description:    payload.Description,
		CoverArt:       payload.CoverArt,
		PageCount:      payload.PageCount,
		PublishingDate: payload.PublishingDate,
		AuthorID:       payload.AuthorID,
	}
	if err := r.Catalog.CreateBook(book); err != nil {
		return nil, err
	}
	return book, nil
}

func (r *Resolver) resolveUpdateBook(p graphql.ResolveParams) (interface{}, error) {
	if _, err := r.requireAdmin(p.Args["id_reader"]); err != nil {
		return nil, err
	}

	bookID, err := parseID(p.Args["id_book"])
	if err != nil {
		return nil, err
	}
	input, ok := p.Args["input"].(map[string]interface{})
	if !ok {
		return nil, ErrInvalidID
	}
	updates, err := parseBookUpdates(input)
	if err != nil {
		return nil, err
	}

	return r.Catalog.UpdateBook(bookID, updates)
}

func (r *Resolver) resolveDeleteBook(p graphql.ResolveParams) (interface{}, error) {
	if _, err := r.requireAdmin(p.Args["id_reader"]); err != nil {
		return nil, err
	}

	bookID, err := parseID(p.Args["id_book"])
	if err != nil {
		return nil, err
	}
	return r.Catalog.DeleteBook(bookID)
}

func (r *Resolver) resolveAddAuthor(p graphql.ResolveParams) (interface{}, error) {
	if _, err := r.requireAdmin(p.Args["id_reader"]); err != nil {
		return nil, err
	}

	payload := authorPayload{Name: p.Args["name"].(string)}
	payload.Picture, _ = p.Args["picture"].(string)
	payload.Born, _ = p.Args["born"].(string)
	payload.Died, _ = p.Args["died"].(string)
	payload.Description, _ = p.Args["description"].(string)
	if err := r.validate.Struct(payload); err != nil {
		return nil, err
	}

	author := &entities.Author{
		Name:        payload.Name,
		Picture:     payload.Picture,
		Born:        payload.Born,
		Died:        payload.Died,
		Description: payload.Description,
	}
	if err := r.Catalog.CreateAuthor(author); err != nil {
		return nil, err
	}
	return author, nil
}

func (r *Resolver) resolveAssignGenres(p graphql.ResolveParams) (interface{}, error) {
	if _, err := r.requireAdmin(p.Args["id_reader"]); err != nil {
		return nil, err
	}

	bookID, err := parseID(p.Args["id_book"])
	if err != nil {
		return nil, err
	}
	rawNames, ok := p.Args["genres"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("genres must be a list of names")
	}
	if len(rawNames) == 0 {
		return r.Catalog.GetBookByID(bookID)
	}

	genreIDs := make([]uint, 0, len(rawNames))
	for _, raw := range rawNames {
		name, _ := raw.(string)
		genre, err := r.Catalog.GetGenreByName(name)
		if err != nil {
			return nil, fmt.Errorf("unknown genre %q", name)
		}
		genreIDs = append(genreIDs, genre.ID)
	}

	if err := r.Catalog.AssignGenres(bookID, genreIDs); err != nil {
		return nil, err
	}
	return r.Catalog.GetBookByID(bookID)
}

func (r *Resolver) resolveDeleteReview(p graphql.ResolveParams) (interface{}, error) {
	readerID, err := parseID(p.Args["id_reader"])
	if err != nil {
		return nil, err
	}
	bookID, err := parseID(p.Args["id_book"])
	if err != nil {
		return nil, err
	}
	return r.Reviews.DeleteReview(readerID, bookID)
}

func parseBookPayload(input map[string]interface{}) (bookPayload, error) {
	var payload bookPayload

	payload.Title, _ = input["title"].(string)
	payload.Description, _ = input["description"].(string)
	payload.CoverArt, _ = input["cover_art"].(string)
	if pages, ok := input["no_pages"].(int); ok {
		payload.PageCount = pages
	}
	payload.PublishingDate, _ = input["publishing_date"].(string)

	authorID, err := parseID(input["id_author"])
	if err != nil {
		return payload, err
	}
	payload.AuthorID = authorID

	return payload, nil
}

// parseBookUpdates maps the sparse update input onto store columns. Only keys
// the caller actually supplied appear in the result.
func parseBookUpdates(input map[string]interface{}) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if title, ok := input["title"].(string); ok {
		updates["title"] = title
	}
	if description, ok := input["description"].(string); ok {
		updates["description"] = description
	}
	if coverArt, ok := input["cover_art"].(string); ok {
		updates["cover_art"] = coverArt
	}
	if pages, ok := input["no_pages"].(int); ok {
		updates["page_count"] = pages
	}
	if date, ok := input["publishing_date"].(string); ok {
		updates["publishing_date"] = date
	}
	if rawAuthor, ok := input["id_author"]; ok {
		authorID, err := parseID(rawAuthor)
		if err != nil {
			return nil, err
		}
		updates["author_id"] = authorID
	}

	return updates, nil
}
