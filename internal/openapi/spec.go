// Package openapi builds the console's OpenAPI 3.1 document. The API
// surface is fixed, so the document is generated once and served verbatim.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	specOnce sync.Once
	specJSON []byte
)

// Handler returns an http.HandlerFunc serving the API document as JSON.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specOnce.Do(func() {
			specJSON, _ = json.Marshal(Spec())
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(specJSON)
	}
}

// Spec generates the OpenAPI 3.1 document for the console API.
func Spec() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "BudBeer Console API",
			Description: "Moderation, trust, and admin authentication API for the BudBeer console.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: "/"},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    intSchema("int32"),
							"message": strSchema(),
						},
					},
				},
			},
		},
	}
	doc.Components.Schemas["Bar"] = objectSchema(openapi3.Schemas{
		"id":             intSchema("int64"),
		"name":           strSchema(),
		"latitude":       numSchema(),
		"longitude":      numSchema(),
		"regularPrice":   numSchema(),
		"happyHourPrice": numSchema(),
		"status":         strSchema(),
		"submittedAt":    dateTimeSchema(),
		"submittedByIP":  strSchema(),
		"deviceId":       strSchema(),
	})
	doc.Components.Schemas["Report"] = objectSchema(openapi3.Schemas{
		"id":           intSchema("int64"),
		"barId":        intSchema("int64"),
		"barName":      strSchema(),
		"reason":       strSchema(),
		"status":       strSchema(),
		"reportedAt":   dateTimeSchema(),
		"reportedByIP": strSchema(),
		"deviceId":     strSchema(),
	})
	doc.Components.Schemas["BanEntry"] = objectSchema(openapi3.Schemas{
		"id":       intSchema("int64"),
		"ip":       strSchema(),
		"deviceId": strSchema(),
		"reason":   strSchema(),
		"bannedAt": dateTimeSchema(),
	})
	doc.Components.Schemas["Stats"] = objectSchema(openapi3.Schemas{
		"totalBars":     intSchema("int64"),
		"barsThisWeek":  intSchema("int64"),
		"activeDevices": intSchema("int64"),
		"pending":       intSchema("int64"),
		"approved":      intSchema("int64"),
		"rejected":      intSchema("int64"),
		"reports":       intSchema("int64"),
		"bannedIPs":     intSchema("int64"),
	})

	doc.Paths = openapi3.NewPaths()

	// Public intake
	doc.Paths.Set("/api/bars", &openapi3.PathItem{
		Post: operation("intake", "Submit a bar for moderation", "submit_bar",
			"201", "Submitted bar", ref("Bar")),
	})
	doc.Paths.Set("/api/reports", &openapi3.PathItem{
		Post: operation("intake", "Report a bar", "submit_report",
			"201", "Submitted report", ref("Report")),
	})

	// Authentication
	doc.Paths.Set("/api/admin/login", &openapi3.PathItem{
		Post: operation("auth", "Authenticate an admin", "login",
			"200", "Session token or two-factor challenge", anySchema()),
	})
	doc.Paths.Set("/api/admin/verify-2fa", &openapi3.PathItem{
		Post: operation("auth", "Complete a two-factor challenge", "verify_2fa",
			"200", "Session token", anySchema()),
	})
	for _, p := range []struct {
		path, summary, id string
	}{
		{"/api/admin/2fa-status", "Report two-factor status", "status_2fa"},
		{"/api/admin/setup-2fa", "Generate a pending TOTP secret", "setup_2fa"},
		{"/api/admin/enable-2fa", "Enable two-factor authentication", "enable_2fa"},
		{"/api/admin/disable-2fa", "Disable two-factor authentication", "disable_2fa"},
	} {
		item := &openapi3.PathItem{}
		op := secured(operation("auth", p.summary, p.id, "200", "Result", anySchema()))
		switch p.path {
		case "/api/admin/2fa-status":
			item.Get = op
		case "/api/admin/setup-2fa":
			item.Get = secured(operation("auth", p.summary, "get_setup_2fa", "200", "Result", anySchema()))
			item.Post = op
		default:
			item.Post = op
		}
		doc.Paths.Set(p.path, item)
	}

	// Moderation queue
	doc.Paths.Set("/api/admin/bars", &openapi3.PathItem{
		Get:  secured(operation("bars", "List bars", "list_bars", "200", "Bars", arrayOf("Bar"))),
		Post: secured(operation("bars", "Create an approved bar", "create_bar", "201", "Created bar", ref("Bar"))),
	})
	doc.Paths.Set("/api/admin/bars/{id}", &openapi3.PathItem{
		Get:        secured(operation("bars", "Get a bar", "get_bar", "200", "Bar", ref("Bar"))),
		Put:        secured(operation("bars", "Edit a bar", "update_bar", "200", "Updated bar", ref("Bar"))),
		Delete:     secured(operation("bars", "Delete a bar", "delete_bar", "200", "Result", anySchema())),
		Parameters: idParams(),
	})
	doc.Paths.Set("/api/admin/bars/{id}/approve", &openapi3.PathItem{
		Patch:      secured(operation("bars", "Approve a bar", "approve_bar", "200", "Result", anySchema())),
		Parameters: idParams(),
	})
	doc.Paths.Set("/api/admin/bars/{id}/reject", &openapi3.PathItem{
		Patch:      secured(operation("bars", "Reject a bar", "reject_bar", "200", "Result", anySchema())),
		Parameters: idParams(),
	})

	// Reports
	doc.Paths.Set("/api/admin/reports", &openapi3.PathItem{
		Get: secured(operation("reports", "List reports", "list_reports", "200", "Reports", arrayOf("Report"))),
	})
	doc.Paths.Set("/api/admin/reports/{id}/resolve", &openapi3.PathItem{
		Patch:      secured(operation("reports", "Resolve a report", "resolve_report", "200", "Result", anySchema())),
		Parameters: idParams(),
	})
	doc.Paths.Set("/api/admin/reports/{id}", &openapi3.PathItem{
		Delete:     secured(operation("reports", "Delete a report", "delete_report", "200", "Result", anySchema())),
		Parameters: idParams(),
	})

	// Ban registry
	doc.Paths.Set("/api/admin/banned", &openapi3.PathItem{
		Get: secured(operation("bans", "List bans", "list_bans", "200", "Bans", arrayOf("BanEntry"))),
	})
	doc.Paths.Set("/api/admin/ban", &openapi3.PathItem{
		Post: secured(operation("bans", "Ban an IP or device", "create_ban", "201", "Created ban", ref("BanEntry"))),
	})
	doc.Paths.Set("/api/admin/banned/{id}", &openapi3.PathItem{
		Delete:     secured(operation("bans", "Lift a ban", "delete_ban", "200", "Result", anySchema())),
		Parameters: idParams(),
	})

	// Dashboard
	doc.Paths.Set("/api/admin/stats", &openapi3.PathItem{
		Get: secured(operation("stats", "Dashboard counters", "get_stats", "200", "Stats", ref("Stats"))),
	})

	return doc
}

func operation(tag, summary, operationID, statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     summary,
		OperationID: operationID,
		Responses:   newResponses(statusCode, description, schema),
	}
}

func secured(op *openapi3.Operation) *openapi3.Operation {
	op.Security = &openapi3.SecurityRequirements{
		{"bearerAuth": []string{}},
	}
	return op
}

func idParams() openapi3.Parameters {
	return openapi3.Parameters{
		{
			Value: &openapi3.Parameter{
				Name:     "id",
				In:       "path",
				Required: true,
				Schema:   intSchema("int64"),
			},
		},
	}
}

func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)
	for code, desc := range map[string]string{
		"400": "Bad request",
		"401": "Unauthorized",
		"404": "Not found",
		"500": "Internal server error",
	} {
		d := desc
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &d,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}

	return responses
}

func objectSchema(props openapi3.Schemas) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
		},
	}
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef(fmt.Sprintf("#/components/schemas/%s", name), nil)
}

func arrayOf(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: ref(name),
		},
	}
}

func anySchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}}
}

func strSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}
}

func numSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}}}
}

func intSchema(format string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: format}}
}

func dateTimeSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}}
}
