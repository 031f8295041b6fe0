package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	graphqlgo "github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/shelfmark/shelfmark/internal/graphql"
)

// GraphQLController serves the single API endpoint.
type GraphQLController struct {
	schema graphqlgo.Schema
}

func NewGraphQLController(schema graphqlgo.Schema) *GraphQLController {
	return &GraphQLController{schema: schema}
}

// graphQLRequest is the standard POST body shape.
type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// graphQLResponse is the response envelope. A failed operation surfaces in
// errors without affecting sibling operations in the same document.
type graphQLResponse struct {
	Data   interface{}                `json:"data,omitempty"`
	Errors []gqlerrors.FormattedError `json:"errors,omitempty"`
}

// Execute runs one GraphQL document against the schema.
func (controller *GraphQLController) Execute(c *gin.Context) {
	var req graphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	// The request travels in the context so login/register can set sessions
	ctx := graphql.WithRequest(c.Request.Context(), c.Request)

	result := graphqlgo.Do(graphqlgo.Params{
		Schema:         controller.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})

	c.JSON(http.StatusOK, graphQLResponse{
		Data:   result.Data,
		Errors: result.Errors,
	})
}
