package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/appdev/finance/finance-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

const apiBasePath = "/api/v1"

// OpenAPI3Spec is the subset of an OpenAPI 3.0 document served at /openapi.json
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server is an OpenAPI 3.0 server entry
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OpenAPIHandler converts the swag-generated Swagger 2.0 document to OpenAPI 3.0
type OpenAPIHandler struct {
	servers []Server
}

// NewOpenAPIHandler lists the local server on port and, when set, the public API URL
func NewOpenAPIHandler(port, publicURL string) *OpenAPIHandler {
	servers := []Server{{
		URL:         fmt.Sprintf("http://localhost:%s%s", port, apiBasePath),
		Description: "Local",
	}}
	if publicURL = strings.TrimRight(publicURL, "/"); publicURL != "" {
		servers = append(servers, Server{URL: publicURL + apiBasePath, Description: "Public"})
	}
	return &OpenAPIHandler{servers: servers}
}

// ServeSpec serves the converted document at /openapi.json
func (h *OpenAPIHandler) ServeSpec(c echo.Context) error {
	spec, err := h.Build()
	if err != nil {
		return NewInternalError(c, "Failed to build API document")
	}
	return c.JSON(http.StatusOK, spec)
}

// Build reads the registered Swagger document and converts it
func (h *OpenAPIHandler) Build() (*OpenAPI3Spec, error) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return nil, fmt.Errorf("read swagger doc: %w", err)
	}

	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		return nil, fmt.Errorf("parse swagger doc: %w", err)
	}

	info, _ := swagger2["info"].(map[string]interface{})
	paths, _ := swagger2["paths"].(map[string]interface{})

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = convertSecuritySchemes(secDefs)
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = rewriteRefs(definitions)
	}

	return &OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    h.servers,
		Paths:      convertPaths(paths),
		Components: components,
	}, nil
}

func convertPaths(paths map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(paths))
	for path, item := range paths {
		methods, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		converted := make(map[string]interface{}, len(methods))
		for method, op := range methods {
			if operation, ok := op.(map[string]interface{}); ok {
				converted[method] = convertOperation(operation)
			}
		}
		result[path] = converted
	}
	return result
}

// convertOperation moves body parameters into requestBody and response
// schemas under content, keyed by the operation's consumes/produces types.
func convertOperation(op map[string]interface{}) map[string]interface{} {
	consumes := stringList(op["consumes"], "application/json")
	produces := stringList(op["produces"], "application/json")

	result := make(map[string]interface{})
	for key, value := range op {
		switch key {
		case "consumes", "produces", "parameters", "responses":
		default:
			result[key] = rewriteRefs(value)
		}
	}

	if params, ok := op["parameters"].([]interface{}); ok {
		var converted []interface{}
		for _, p := range params {
			param, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			if param["in"] == "body" {
				content := make(map[string]interface{}, len(consumes))
				for _, mediaType := range consumes {
					content[mediaType] = map[string]interface{}{"schema": rewriteRefs(param["schema"])}
				}
				body := map[string]interface{}{"content": content}
				if required, ok := param["required"].(bool); ok {
					body["required"] = required
				}
				if desc, ok := param["description"].(string); ok {
					body["description"] = desc
				}
				result["requestBody"] = body
				continue
			}
			converted = append(converted, convertParameter(param))
		}
		if len(converted) > 0 {
			result["parameters"] = converted
		}
	}

	if responses, ok := op["responses"].(map[string]interface{}); ok {
		converted := make(map[string]interface{}, len(responses))
		for code, r := range responses {
			resp, ok := r.(map[string]interface{})
			if !ok {
				continue
			}
			out := map[string]interface{}{"description": resp["description"]}
			if schema, ok := resp["schema"].(map[string]interface{}); ok {
				if schema["type"] == "file" {
					schema = map[string]interface{}{"type": "string", "format": "binary"}
				}
				content := make(map[string]interface{}, len(produces))
				for _, mediaType := range produces {
					content[mediaType] = map[string]interface{}{"schema": rewriteRefs(schema)}
				}
				out["content"] = content
			}
			converted[code] = out
		}
		result["responses"] = converted
	}

	return result
}

// convertParameter nests the Swagger 2.0 type fields of a query or path parameter under schema
func convertParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = rewriteRefs(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

func convertSecuritySchemes(defs map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(defs))
	for name, d := range defs {
		def, ok := d.(map[string]interface{})
		if ok && def["type"] == "apiKey" && def["name"] == echo.HeaderAuthorization {
			result[name] = map[string]interface{}{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
			continue
		}
		result[name] = d
	}
	return result
}

// rewriteRefs points $ref values at components/schemas instead of definitions
func rewriteRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = rewriteRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = rewriteRefs(item)
		}
		return result
	default:
		return data
	}
}

func stringList(value interface{}, fallback string) []string {
	items, ok := value.([]interface{})
	if !ok || len(items) == 0 {
		return []string{fallback}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
