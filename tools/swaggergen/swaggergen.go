// Command swaggergen writes the OpenAPI 3.0 description of the character
// favourites API to api/swagger.json and api/swagger.yaml.
//
// Usage:
//
//	go run ./tools/swaggergen
//
// Keep buildPaths and buildSchemas in step with internal/routes when an
// endpoint or payload changes, then regenerate.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

type OpenAPI struct {
	OpenAPI    string               `json:"openapi"    yaml:"openapi"`
	Info       Info                 `json:"info"       yaml:"info"`
	Paths      map[string]*PathItem `json:"paths"      yaml:"paths"`
	Components Components           `json:"components" yaml:"components"`
}

type Info struct {
	Title       string `json:"title"       yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version"     yaml:"version"`
}

type PathItem struct {
	Get    *Operation `json:"get,omitempty"    yaml:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"   yaml:"post,omitempty"`
	Delete *Operation `json:"delete,omitempty" yaml:"delete,omitempty"`
}

type Operation struct {
	Tags        []string              `json:"tags"                  yaml:"tags"`
	Summary     string                `json:"summary"               yaml:"summary"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	OperationID string                `json:"operationId"           yaml:"operationId"`
	Security    []map[string][]string `json:"security,omitempty"    yaml:"security,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty"  yaml:"parameters,omitempty"`
	RequestBody *RequestBody          `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]Response   `json:"responses"             yaml:"responses"`
}

type Parameter struct {
	Name        string `json:"name"        yaml:"name"`
	In          string `json:"in"          yaml:"in"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required"    yaml:"required"`
	Schema      Schema `json:"schema"      yaml:"schema"`
}

type RequestBody struct {
	Required bool                 `json:"required" yaml:"required"`
	Content  map[string]MediaType `json:"content"  yaml:"content"`
}

type MediaType struct {
	Schema Schema `json:"schema" yaml:"schema"`
}

type Response struct {
	Description string               `json:"description"       yaml:"description"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type Schema struct {
	Type        string            `json:"type,omitempty"        yaml:"type,omitempty"`
	Format      string            `json:"format,omitempty"      yaml:"format,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty"  yaml:"properties,omitempty"`
	Items       *Schema           `json:"items,omitempty"       yaml:"items,omitempty"`
	Required    []string          `json:"required,omitempty"    yaml:"required,omitempty"`
	Enum        []string          `json:"enum,omitempty"        yaml:"enum,omitempty"`
	Ref         string            `json:"$ref,omitempty"        yaml:"$ref,omitempty"`
	Nullable    bool              `json:"nullable,omitempty"    yaml:"nullable,omitempty"`
	Minimum     *int              `json:"minimum,omitempty"     yaml:"minimum,omitempty"`
	MinItems    *int              `json:"minItems,omitempty"    yaml:"minItems,omitempty"`
	MaxItems    *int              `json:"maxItems,omitempty"    yaml:"maxItems,omitempty"`
	MaxLength   *int              `json:"maxLength,omitempty"   yaml:"maxLength,omitempty"`
}

type Components struct {
	Schemas         map[string]Schema         `json:"schemas"         yaml:"schemas"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes" yaml:"securitySchemes"`
}

type SecurityScheme struct {
	Type         string `json:"type"         yaml:"type"`
	Scheme       string `json:"scheme"       yaml:"scheme"`
	BearerFormat string `json:"bearerFormat" yaml:"bearerFormat"`
	Description  string `json:"description"  yaml:"description"`
}

func buildSpec() OpenAPI {
	return OpenAPI{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       "Character Favourites API",
			Description: "Browse the character catalog and keep a per-user list of favourite characters.",
			Version:     "1.0.0",
		},
		Paths: buildPaths(),
		Components: Components{
			Schemas:         buildSchemas(),
			SecuritySchemes: buildSecuritySchemes(),
		},
	}
}

func buildPaths() map[string]*PathItem {
	bearerAuth := []map[string][]string{{"BearerAuth": {}}}
	unauthorized := Response{Description: "Missing or invalid JWT", Content: errContent()}

	return map[string]*PathItem{
		"/api/v1/auth/login": {
			Post: &Operation{
				Tags:        []string{"Auth"},
				Summary:     "Log in",
				Description: "Checks email and password against the user list and returns a JWT whose subject is the user's email.",
				OperationID: "login",
				RequestBody: jsonBody("LoginRequest"),
				Responses: map[string]Response{
					"200": jsonResponse("Token issued", "LoginResponse"),
					"400": {Description: "Invalid request body or validation error", Content: errContent()},
					"401": {Description: "Incorrect email or password", Content: errContent()},
				},
			},
		},
		"/api/v1/characters": {
			Get: &Operation{
				Tags:        []string{"Characters"},
				Summary:     "Browse characters",
				Description: "Returns one catalog page with each character marked as favourite or not. A search without matches returns an empty page.",
				OperationID: "browseCharacters",
				Security:    bearerAuth,
				Parameters: []Parameter{
					{Name: "page", In: "query", Description: "1-based page number", Schema: Schema{Type: "integer", Minimum: intPtr(1)}},
					{Name: "name", In: "query", Description: "Case-insensitive name filter", Schema: Schema{Type: "string", MaxLength: intPtr(255)}},
				},
				Responses: map[string]Response{
					"200": jsonResponse("A page of characters", "FavouriteCharacterPage"),
					"400": {Description: "Invalid page or name", Content: errContent()},
					"401": unauthorized,
					"502": {Description: "Character catalog unavailable", Content: errContent()},
				},
			},
		},
		"/api/v1/characters/{characterID}": {
			Get: &Operation{
				Tags:        []string{"Characters"},
				Summary:     "Get a character",
				OperationID: "getCharacter",
				Security:    bearerAuth,
				Parameters:  []Parameter{characterIDParam()},
				Responses: map[string]Response{
					"200": jsonResponse("The character", "FavouriteCharacter"),
					"400": {Description: "Invalid character id", Content: errContent()},
					"401": unauthorized,
					"404": {Description: "Character not found", Content: errContent()},
					"502": {Description: "Character catalog unavailable", Content: errContent()},
				},
			},
		},
		"/api/v1/favourites": {
			Get: &Operation{
				Tags:        []string{"Favourites"},
				Summary:     "List favourites",
				Description: "Returns the user's favourite character ids in the order they were added.",
				OperationID: "listFavourites",
				Security:    bearerAuth,
				Responses: map[string]Response{
					"200": jsonResponse("The user's favourites", "FavouritesList"),
					"401": unauthorized,
				},
			},
			Delete: &Operation{
				Tags:        []string{"Favourites"},
				Summary:     "Clear favourites",
				Description: "Removes every favourite of the user. Clearing an empty list succeeds.",
				OperationID: "clearFavourites",
				Security:    bearerAuth,
				Responses: map[string]Response{
					"200": jsonResponse("Favourites cleared", "SuccessMessage"),
					"401": unauthorized,
				},
			},
		},
		"/api/v1/favourites/count": {
			Get: &Operation{
				Tags:        []string{"Favourites"},
				Summary:     "Count favourites",
				OperationID: "countFavourites",
				Security:    bearerAuth,
				Responses: map[string]Response{
					"200": jsonResponse("Number of favourites", "CountResponse"),
					"401": unauthorized,
				},
			},
		},
		"/api/v1/favourites/toggle": {
			Post: &Operation{
				Tags:        []string{"Favourites"},
				Summary:     "Toggle several favourites",
				Description: "Toggles each id in order. An id listed twice cancels out.",
				OperationID: "toggleFavourites",
				Security:    bearerAuth,
				RequestBody: jsonBody("ToggleFavouritesRequest"),
				Responses: map[string]Response{
					"200": jsonResponse("The user's favourites after the toggles", "FavouritesList"),
					"400": {Description: "Invalid request body or validation error", Content: errContent()},
					"401": unauthorized,
				},
			},
		},
		"/api/v1/favourites/{characterID}": {
			Get: &Operation{
				Tags:        []string{"Favourites"},
				Summary:     "Favourite status",
				OperationID: "favouriteStatus",
				Security:    bearerAuth,
				Parameters:  []Parameter{characterIDParam()},
				Responses: map[string]Response{
					"200": jsonResponse("Whether the character is a favourite", "FavouriteStatus"),
					"400": {Description: "Invalid character id", Content: errContent()},
					"401": unauthorized,
				},
			},
		},
		"/api/v1/favourites/{characterID}/toggle": {
			Post: &Operation{
				Tags:        []string{"Favourites"},
				Summary:     "Toggle a favourite",
				Description: "Adds the character when absent and removes it when present.",
				OperationID: "toggleFavourite",
				Security:    bearerAuth,
				Parameters:  []Parameter{characterIDParam()},
				Responses: map[string]Response{
					"200": jsonResponse("The new favourite status", "FavouriteStatus"),
					"400": {Description: "Invalid character id", Content: errContent()},
					"401": unauthorized,
				},
			},
		},
	}
}

func characterIDParam() Parameter {
	return Parameter{
		Name:        "characterID",
		In:          "path",
		Description: "Catalog id of the character",
		Required:    true,
		Schema:      Schema{Type: "integer", Minimum: intPtr(1)},
	}
}

func jsonBody(schema string) *RequestBody {
	return &RequestBody{
		Required: true,
		Content: map[string]MediaType{
			"application/json": {Schema: Schema{Ref: "#/components/schemas/" + schema}},
		},
	}
}

func jsonResponse(description, schema string) Response {
	return Response{
		Description: description,
		Content: map[string]MediaType{
			"application/json": {Schema: Schema{Ref: "#/components/schemas/" + schema}},
		},
	}
}

func errContent() map[string]MediaType {
	return map[string]MediaType{
		"application/json": {Schema: Schema{Ref: "#/components/schemas/ErrorResponse"}},
	}
}

func intPtr(v int) *int { return &v }

func buildSecuritySchemes() map[string]SecurityScheme {
	return map[string]SecurityScheme{
		"BearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "JWT from /api/v1/auth/login. The 'sub' claim is the user's email.",
		},
	}
}

func buildSchemas() map[string]Schema {
	location := Schema{
		Type: "object",
		Properties: map[string]Schema{
			"name": {Type: "string"},
			"url":  {Type: "string"},
		},
	}
	characterProps := map[string]Schema{
		"id":       {Type: "integer"},
		"name":     {Type: "string"},
		"status":   {Type: "string", Enum: []string{"Alive", "Dead", "unknown"}},
		"species":  {Type: "string"},
		"type":     {Type: "string"},
		"gender":   {Type: "string"},
		"origin":   location,
		"location": location,
		"image":    {Type: "string"},
		"episode":  {Type: "array", Items: &Schema{Type: "string"}},
		"url":      {Type: "string"},
		"created":  {Type: "string", Format: "date-time"},
	}
	favouriteCharacterProps := map[string]Schema{"is_favourite": {Type: "boolean"}}
	for k, v := range characterProps {
		favouriteCharacterProps[k] = v
	}

	return map[string]Schema{
		"ErrorResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"error": {Type: "string", Description: "Human-readable error message"},
			},
			Required: []string{"error"},
		},
		"SuccessMessage": {
			Type: "object",
			Properties: map[string]Schema{
				"message": {Type: "string"},
			},
			Required: []string{"message"},
		},
		"LoginRequest": {
			Type: "object",
			Properties: map[string]Schema{
				"email":    {Type: "string", Format: "email", MaxLength: intPtr(255)},
				"password": {Type: "string", MaxLength: intPtr(255)},
			},
			Required: []string{"email", "password"},
		},
		"LoginResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"token":      {Type: "string"},
				"expires_at": {Type: "string", Format: "date-time"},
				"user":       {Ref: "#/components/schemas/User"},
			},
			Required: []string{"token", "expires_at", "user"},
		},
		"User": {
			Type: "object",
			Properties: map[string]Schema{
				"id":     {Type: "integer"},
				"email":  {Type: "string"},
				"name":   {Type: "string"},
				"role":   {Type: "string"},
				"avatar": {Type: "string"},
			},
		},
		"PageInfo": {
			Type: "object",
			Properties: map[string]Schema{
				"count": {Type: "integer"},
				"pages": {Type: "integer"},
				"next":  {Type: "string", Nullable: true},
				"prev":  {Type: "string", Nullable: true},
			},
		},
		"FavouriteCharacter": {
			Type:        "object",
			Description: "A catalog character marked for the requesting user.",
			Properties:  favouriteCharacterProps,
			Required:    []string{"id", "name", "is_favourite"},
		},
		"FavouriteCharacterPage": {
			Type: "object",
			Properties: map[string]Schema{
				"info":             {Ref: "#/components/schemas/PageInfo"},
				"results":          {Type: "array", Items: &Schema{Ref: "#/components/schemas/FavouriteCharacter"}},
				"favourites_count": {Type: "integer"},
			},
			Required: []string{"info", "results", "favourites_count"},
		},
		"FavouritesList": {
			Type: "object",
			Properties: map[string]Schema{
				"ids":   {Type: "array", Items: &Schema{Type: "integer"}, Description: "In the order they were added"},
				"count": {Type: "integer"},
			},
			Required: []string{"ids", "count"},
		},
		"FavouriteStatus": {
			Type: "object",
			Properties: map[string]Schema{
				"id":           {Type: "integer"},
				"is_favourite": {Type: "boolean"},
				"count":        {Type: "integer", Description: "The user's favourites count"},
			},
			Required: []string{"id", "is_favourite", "count"},
		},
		"CountResponse": {
			Type: "object",
			Properties: map[string]Schema{
				"count": {Type: "integer"},
			},
			Required: []string{"count"},
		},
		"ToggleFavouritesRequest": {
			Type: "object",
			Properties: map[string]Schema{
				"ids": {
					Type:     "array",
					Items:    &Schema{Type: "integer", Minimum: intPtr(1)},
					MinItems: intPtr(1),
					MaxItems: intPtr(100),
				},
			},
			Required: []string{"ids"},
		},
	}
}

func writeJSON(spec OpenAPI, path string) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func writeYAML(spec OpenAPI, path string) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal YAML: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func main() {
	_, src, _, _ := runtime.Caller(0)
	outDir := filepath.Join(filepath.Dir(src), "..", "..", "api")

	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create api/ directory: %v\n", err)
		os.Exit(1)
	}

	spec := buildSpec()

	jsonPath := filepath.Join(outDir, "swagger.json")
	if err := writeJSON(spec, jsonPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing JSON: %v\n", err)
		os.Exit(1)
	}

	yamlPath := filepath.Join(outDir, "swagger.yaml")
	if err := writeYAML(spec, yamlPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing YAML: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Swagger specs generated:\n  %s\n  %s\n", jsonPath, yamlPath)
}
