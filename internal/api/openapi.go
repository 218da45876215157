package api

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// DocInfo is the descriptive header of the published API document.
type DocInfo struct {
	Title        string
	Version      string
	Description  string
	ContactName  string
	ContactEmail string
	ContactURL   string
	LicenseName  string
	LicenseURL   string
}

// DefaultDocInfo describes this service.
var DefaultDocInfo = DocInfo{
	Title:        "AMCLOUD Notification Service API",
	Version:      "3.0.0",
	Description:  "API documentation for the Notification microservice.",
	ContactName:  "AMCLOUD Support",
	ContactEmail: "project.in3.uds@outlook.com",
	ContactURL:   "https://platform.amcloud.cm",
	LicenseName:  "Apache 2.0",
	LicenseURL:   "http://springdoc.org",
}

const requestSchemaRef = "#/components/schemas/NotificationRequest"

func newOpenAPIDoc(info DocInfo) *openapi3.T {
	send := openapi3.NewOperation()
	send.Tags = []string{"notifications"}
	send.Summary = "Send an email notification"
	send.OperationID = "send"
	for _, h := range []string{HeaderUserID, HeaderUserRoles, HeaderUserScopes} {
		send.AddParameter(openapi3.NewHeaderParameter(h).WithSchema(openapi3.NewStringSchema()))
	}
	send.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchemaRef(openapi3.NewSchemaRef(requestSchemaRef, nil)),
	}

	confirmation := openapi3.NewStringSchema()
	confirmation.Example = ConfirmationMessage
	send.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("The mail transport accepted the message").
				WithContent(openapi3.NewContentWithSchema(confirmation, []string{"text/plain"})),
		}),
		openapi3.WithStatus(http.StatusBadRequest, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Request body is not valid JSON"),
		}),
		openapi3.WithStatus(http.StatusInternalServerError, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("The mail transport failed"),
		}),
	)

	request := openapi3.NewObjectSchema().
		WithProperty("to", openapi3.NewStringSchema()).
		WithProperty("subject", openapi3.NewStringSchema()).
		WithProperty("content", openapi3.NewStringSchema())

	doc := &openapi3.T{
		OpenAPI: "3.0.1",
		Info: &openapi3.Info{
			Title:       info.Title,
			Version:     info.Version,
			Description: info.Description,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/api/notifications/send", &openapi3.PathItem{Post: send}),
		),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"NotificationRequest": openapi3.NewSchemaRef("", request),
			},
		},
	}
	if info.ContactName != "" || info.ContactEmail != "" || info.ContactURL != "" {
		doc.Info.Contact = &openapi3.Contact{Name: info.ContactName, Email: info.ContactEmail, URL: info.ContactURL}
	}
	if info.LicenseName != "" {
		doc.Info.License = &openapi3.License{Name: info.LicenseName, URL: info.LicenseURL}
	}
	return doc
}

// OpenAPIHandler handles GET /v3/api-docs.
func OpenAPIHandler(info DocInfo) http.HandlerFunc {
	doc := newOpenAPIDoc(info)
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, doc)
	}
}

// OpenAPIYAMLHandler handles GET /v3/api-docs.yaml.
func OpenAPIYAMLHandler(info DocInfo) http.HandlerFunc {
	body, err := yaml.Marshal(newOpenAPIDoc(info))
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}
