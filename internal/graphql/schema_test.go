package graphql

import (
	"fmt"
	"os"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/database/catalog"
	"github.com/shelfmark/shelfmark/internal/database/lists"
	"github.com/shelfmark/shelfmark/internal/database/readers"
	"github.com/shelfmark/shelfmark/internal/database/reviews"
	"github.com/shelfmark/shelfmark/internal/entities"
)

type testEnv struct {
	db     *gorm.DB
	schema graphql.Schema
	auth   *auth.Service
}

func setupTestSchema(t *testing.T) (*testEnv, func()) {
	dbPath := "./test_graphql_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Reader{},
		&entities.Author{},
		&entities.Genre{},
		&entities.Book{},
		&entities.List{},
		&entities.ListBook{},
		&entities.Review{},
	)
	require.NoError(t, err)

	authService := auth.NewService(db, config.Auth{BcryptCost: 4})
	resolver := NewResolver(
		catalog.NewRepository(db),
		lists.NewRepository(db),
		reviews.NewRepository(db),
		readers.NewRepository(db),
		authService,
		nil,
	)
	schema, err := NewSchema(resolver)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return &testEnv{db: db, schema: schema, auth: authService}, cleanup
}

func (e *testEnv) exec(t *testing.T, query string, variables map[string]interface{}) *graphql.Result {
	t.Helper()
	return graphql.Do(graphql.Params{
		Schema:         e.schema,
		RequestString:  query,
		VariableValues: variables,
	})
}

func (e *testEnv) seedAuthor(t *testing.T, name string) entities.Author {
	author := entities.Author{Name: name}
	require.NoError(t, e.db.Create(&author).Error)
	return author
}

func (e *testEnv) seedBook(t *testing.T, title string, authorID uint) entities.Book {
	book := entities.Book{Title: title, AuthorID: authorID}
	require.NoError(t, e.db.Create(&book).Error)
	return book
}

func (e *testEnv) seedAdmin(t *testing.T) entities.Reader {
	admin, err := e.auth.Register("admin", "admin-password", "")
	require.NoError(t, err)
	require.NoError(t, e.db.Model(admin).Update("role", entities.RoleAdmin).Error)
	admin.Role = entities.RoleAdmin
	return *admin
}

func data(t *testing.T, result *graphql.Result) map[string]interface{} {
	t.Helper()
	require.Empty(t, result.Errors, "unexpected graphql errors: %v", result.Errors)
	m, ok := result.Data.(map[string]interface{})
	require.True(t, ok)
	return m
}

func TestSchema_RegisterCreatesDefaultLists(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	result := env.exec(t, `
		mutation {
			register(username: "alice", password: "correct-horse") {
				id_reader
				username
				lists { name no_books }
			}
		}`, nil)

	reader := data(t, result)["register"].(map[string]interface{})
	assert.Equal(t, "alice", reader["username"])

	readerLists := reader["lists"].([]interface{})
	require.Len(t, readerLists, 3)
	var names []string
	for _, l := range readerLists {
		list := l.(map[string]interface{})
		names = append(names, list["name"].(string))
		assert.Equal(t, 0, list["no_books"])
	}
	assert.Equal(t, []string{"want to read", "reading", "read"}, names)
}

func TestSchema_RegisterDuplicateUsername(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	first := env.exec(t, `mutation { register(username: "alice", password: "correct-horse") { id_reader } }`, nil)
	require.Empty(t, first.Errors)

	second := env.exec(t, `mutation { register(username: "alice", password: "battery-staple") { id_reader } }`, nil)
	require.NotEmpty(t, second.Errors)
	assert.Contains(t, second.Errors[0].Message, "username already taken")
}

func TestSchema_Login(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	_, err := env.auth.Register("alice", "correct-horse", "")
	require.NoError(t, err)

	result := env.exec(t, `mutation { login(username: "alice", password: "correct-horse") { username } }`, nil)
	reader := data(t, result)["login"].(map[string]interface{})
	assert.Equal(t, "alice", reader["username"])

	bad := env.exec(t, `mutation { login(username: "alice", password: "wrong-password") { username } }`, nil)
	assert.NotEmpty(t, bad.Errors)
}

func TestSchema_BooksPagination(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "Terry Pratchett")
	for i := 0; i < 5; i++ {
		env.seedBook(t, fmt.Sprintf("Discworld %d", i), author.ID)
	}

	result := env.exec(t, `{ books(page: 1, count: 2) { total_pages books { title } } }`, nil)
	page := data(t, result)["books"].(map[string]interface{})
	assert.Equal(t, 3, page["total_pages"])
	assert.Len(t, page["books"].([]interface{}), 2)

	result = env.exec(t, `{ books(page: 3, count: 2) { total_pages books { title } } }`, nil)
	page = data(t, result)["books"].(map[string]interface{})
	assert.Len(t, page["books"].([]interface{}), 1)
}

func TestSchema_BookFieldSubsetIndependence(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "Ursula K. Le Guin")
	book := env.seedBook(t, "The Left Hand of Darkness", author.ID)

	// Scalar-only selection
	result := env.exec(t, fmt.Sprintf(`{ book(id_book: "%d") { title } }`, book.ID), nil)
	got := data(t, result)["book"].(map[string]interface{})
	assert.Equal(t, "The Left Hand of Darkness", got["title"])
	assert.NotContains(t, got, "author")

	// Relationship-only selection
	result = env.exec(t, fmt.Sprintf(`{ book(id_book: "%d") { author { name } } }`, book.ID), nil)
	got = data(t, result)["book"].(map[string]interface{})
	authorField := got["author"].(map[string]interface{})
	assert.Equal(t, "Ursula K. Le Guin", authorField["name"])
}

func TestSchema_BookNotFoundIsNull(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	result := env.exec(t, `{ book(id_book: "999") { title } }`, nil)
	assert.Nil(t, data(t, result)["book"])
}

func TestSchema_AvgScore(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "Dan Simmons")
	book := env.seedBook(t, "Hyperion", author.ID)

	// Without reviews avg_score is null and no_reviews is zero
	query := fmt.Sprintf(`{ book(id_book: "%d") { avg_score no_reviews } }`, book.ID)
	got := data(t, env.exec(t, query, nil))["book"].(map[string]interface{})
	assert.Nil(t, got["avg_score"])
	assert.Equal(t, 0, got["no_reviews"])

	alice, err := env.auth.Register("alice", "correct-horse", "")
	require.NoError(t, err)
	bob, err := env.auth.Register("bob", "correct-horse", "")
	require.NoError(t, err)

	review := fmt.Sprintf(`mutation { review_book(id_reader: "%d", id_book: "%d", score: %d) { score } }`, alice.ID, book.ID, 2)
	require.Empty(t, env.exec(t, review, nil).Errors)
	review = fmt.Sprintf(`mutation { review_book(id_reader: "%d", id_book: "%d", score: %d) { score } }`, bob.ID, book.ID, 5)
	require.Empty(t, env.exec(t, review, nil).Errors)

	got = data(t, env.exec(t, query, nil))["book"].(map[string]interface{})
	assert.InDelta(t, 3.5, got["avg_score"].(float64), 0.0001)
	assert.Equal(t, 2, got["no_reviews"])
}

func TestSchema_ReviewBookOverwrites(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "Dan Simmons")
	book := env.seedBook(t, "Hyperion", author.ID)
	alice, err := env.auth.Register("alice", "correct-horse", "")
	require.NoError(t, err)

	first := fmt.Sprintf(`mutation { review_book(id_reader: "%d", id_book: "%d", score: 2, description: "meh") { score } }`, alice.ID, book.ID)
	require.Empty(t, env.exec(t, first, nil).Errors)

	second := fmt.Sprintf(`mutation { review_book(id_reader: "%d", id_book: "%d", score: 5, description: "grew on me") { score description } }`, alice.ID, book.ID)
	review := data(t, env.exec(t, second, nil))["review_book"].(map[string]interface{})
	assert.Equal(t, 5, review["score"])
	assert.Equal(t, "grew on me", review["description"])

	query := fmt.Sprintf(`{ book(id_book: "%d") { no_reviews } }`, book.ID)
	got := data(t, env.exec(t, query, nil))["book"].(map[string]interface{})
	assert.Equal(t, 1, got["no_reviews"])
}

func TestSchema_DeleteReview(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "Dan Simmons")
	book := env.seedBook(t, "Hyperion", author.ID)
	alice, err := env.auth.Register("alice", "correct-horse", "")
	require.NoError(t, err)

	review := fmt.Sprintf(`mutation { review_book(id_reader: "%d", id_book: "%d", score: 4) { score } }`, alice.ID, book.ID)
	require.Empty(t, env.exec(t, review, nil).Errors)

	del := fmt.Sprintf(`mutation { delete_review(id_reader: "%d", id_book: "%d") }`, alice.ID, book.ID)
	assert.Equal(t, true, data(t, env.exec(t, del, nil))["delete_review"])

	// Deleting again reports false
	assert.Equal(t, false, data(t, env.exec(t, del, nil))["delete_review"])
}

func TestSchema_ListMutations(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "Susanna Clarke")
	book := env.seedBook(t, "Piranesi", author.ID)
	alice, err := env.auth.Register("alice", "correct-horse", "")
	require.NoError(t, err)

	var readingList entities.List
	require.NoError(t, env.db.Where("reader_id = ? AND name = ?", alice.ID, "reading").First(&readingList).Error)

	add := fmt.Sprintf(`mutation { add_book_to_list(id_list: "%d", id_book: "%d") { no_books books { title } } }`, readingList.ID, book.ID)
	list := data(t, env.exec(t, add, nil))["add_book_to_list"].(map[string]interface{})
	assert.Equal(t, 1, list["no_books"])

	// Adding again is a no-op
	list = data(t, env.exec(t, add, nil))["add_book_to_list"].(map[string]interface{})
	assert.Equal(t, 1, list["no_books"])

	remove := fmt.Sprintf(`mutation { remove_book_from_list(id_list: "%d", id_book: "%d") { no_books } }`, readingList.ID, book.ID)
	list = data(t, env.exec(t, remove, nil))["remove_book_from_list"].(map[string]interface{})
	assert.Equal(t, 0, list["no_books"])
}

func TestSchema_SearchBooks(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	tolkien := env.seedAuthor(t, "J. R. R. Tolkien")
	other := env.seedAuthor(t, "Frank Herbert")
	env.seedBook(t, "The Hobbit", tolkien.ID)
	env.seedBook(t, "The Silmarillion", tolkien.ID)
	env.seedBook(t, "Dune", other.ID)

	result := env.exec(t, `{ search_books(term: "tolkien", page: 1, count: 10) { total_pages books { title } } }`, nil)
	page := data(t, result)["search_books"].(map[string]interface{})
	assert.Equal(t, 1, page["total_pages"])
	assert.Len(t, page["books"].([]interface{}), 2)
}

func TestSchema_AdminGate(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "New Author")
	alice, err := env.auth.Register("alice", "correct-horse", "")
	require.NoError(t, err)
	admin := env.seedAdmin(t)

	addBook := `mutation ($reader: ID!) {
		add_book(id_reader: $reader, input: {title: "Sanctioned", id_author: "%d"}) { id_book title }
	}`
	addBook = fmt.Sprintf(addBook, author.ID)

	// Plain readers are refused before any write happens
	result := env.exec(t, addBook, map[string]interface{}{"reader": fmt.Sprint(alice.ID)})
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "unauthorized")

	var count int64
	require.NoError(t, env.db.Model(&entities.Book{}).Where("title = ?", "Sanctioned").Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// Admins pass
	result = env.exec(t, addBook, map[string]interface{}{"reader": fmt.Sprint(admin.ID)})
	book := data(t, result)["add_book"].(map[string]interface{})
	assert.Equal(t, "Sanctioned", book["title"])
}

func TestSchema_UpdateBook(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "An Author")
	book := env.seedBook(t, "Old Title", author.ID)
	admin := env.seedAdmin(t)

	update := fmt.Sprintf(`mutation {
		update_book(id_reader: "%d", id_book: "%d", input: {title: "New Title", no_pages: 320}) { title no_pages }
	}`, admin.ID, book.ID)
	got := data(t, env.exec(t, update, nil))["update_book"].(map[string]interface{})
	assert.Equal(t, "New Title", got["title"])
	assert.Equal(t, 320, got["no_pages"])

	// Empty update input is rejected
	empty := fmt.Sprintf(`mutation { update_book(id_reader: "%d", id_book: "%d", input: {}) { title } }`, admin.ID, book.ID)
	assert.NotEmpty(t, env.exec(t, empty, nil).Errors)
}

func TestSchema_DeleteBook(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "An Author")
	book := env.seedBook(t, "Doomed", author.ID)
	admin := env.seedAdmin(t)

	del := fmt.Sprintf(`mutation { delete_book(id_reader: "%d", id_book: "%d") }`, admin.ID, book.ID)
	assert.Equal(t, true, data(t, env.exec(t, del, nil))["delete_book"])
	assert.Equal(t, false, data(t, env.exec(t, del, nil))["delete_book"])
}

func TestSchema_UserReviews(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "An Author")
	first := env.seedBook(t, "First", author.ID)
	second := env.seedBook(t, "Second", author.ID)
	alice, err := env.auth.Register("alice", "correct-horse", "")
	require.NoError(t, err)

	for _, seed := range []struct {
		bookID uint
		score  int
	}{{first.ID, 4}, {second.ID, 1}} {
		m := fmt.Sprintf(`mutation { review_book(id_reader: "%d", id_book: "%d", score: %d) { score } }`, alice.ID, seed.bookID, seed.score)
		require.Empty(t, env.exec(t, m, nil).Errors)
	}

	query := fmt.Sprintf(`{ user_reviews(id_reader: "%d") { score book { title } } }`, alice.ID)
	userReviews := data(t, env.exec(t, query, nil))["user_reviews"].([]interface{})
	require.Len(t, userReviews, 2)
	firstReview := userReviews[0].(map[string]interface{})
	assert.Equal(t, 4, firstReview["score"])
	assert.Equal(t, "First", firstReview["book"].(map[string]interface{})["title"])
}

func TestSchema_ReaderByUsername(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	alice, err := env.auth.Register("alice", "correct-horse", "")
	require.NoError(t, err)

	result := env.exec(t, `{ reader(username: "alice") { id_reader username } }`, nil)
	got := data(t, result)["reader"].(map[string]interface{})
	assert.Equal(t, fmt.Sprint(alice.ID), got["id_reader"])
	assert.Equal(t, "alice", got["username"])

	result = env.exec(t, `{ reader(username: "nobody") { username } }`, nil)
	assert.Nil(t, data(t, result)["reader"])
}

func TestSchema_AddAuthor(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	alice, err := env.auth.Register("alice", "correct-horse", "")
	require.NoError(t, err)
	admin := env.seedAdmin(t)

	add := `mutation ($reader: ID!) {
		add_author(id_reader: $reader, name: "Octavia E. Butler", born: "1947") { id_author name born }
	}`

	result := env.exec(t, add, map[string]interface{}{"reader": fmt.Sprint(alice.ID)})
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "unauthorized")

	result = env.exec(t, add, map[string]interface{}{"reader": fmt.Sprint(admin.ID)})
	author := data(t, result)["add_author"].(map[string]interface{})
	assert.Equal(t, "Octavia E. Butler", author["name"])
	assert.Equal(t, "1947", author["born"])
}

func TestSchema_AssignGenres(t *testing.T) {
	env, cleanup := setupTestSchema(t)
	defer cleanup()

	author := env.seedAuthor(t, "An Author")
	book := env.seedBook(t, "Tagged", author.ID)
	require.NoError(t, env.db.Create(&entities.Genre{Name: "Fantasy"}).Error)
	require.NoError(t, env.db.Create(&entities.Genre{Name: "Horror"}).Error)
	admin := env.seedAdmin(t)

	assign := fmt.Sprintf(`mutation {
		assign_genres(id_reader: "%d", id_book: "%d", genres: ["Fantasy", "Horror"]) { genres { name } }
	}`, admin.ID, book.ID)
	got := data(t, env.exec(t, assign, nil))["assign_genres"].(map[string]interface{})
	assert.Len(t, got["genres"].([]interface{}), 2)

	// The assigned genres surface through search
	search := data(t, env.exec(t, `{ search_books(term: "horror", page: 1, count: 10) { total_pages } }`, nil))
	assert.Equal(t, 1, search["search_books"].(map[string]interface{})["total_pages"])

	unknown := fmt.Sprintf(`mutation {
		assign_genres(id_reader: "%d", id_book: "%d", genres: ["Unheard Of"]) { genres { name } }
	}`, admin.ID, book.ID)
	result := env.exec(t, unknown, nil)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "unknown genre")
}
