// Package main generates the OpenAPI description of the Mobbin proxy API.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// spec is a simplified OpenAPI document structure, enough to describe the
// six routes this service exposes.
type spec struct {
	OpenAPI string         `yaml:"openapi"`
	Info    info           `yaml:"info"`
	Servers []server       `yaml:"servers"`
	Paths   map[string]any `yaml:"paths"`
}

type info struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

type server struct {
	URL string `yaml:"url"`
}

type operation struct {
	Summary     string         `yaml:"summary"`
	Description string         `yaml:"description,omitempty"`
	Tags        []string       `yaml:"tags,omitempty"`
	Parameters  []param        `yaml:"parameters,omitempty"`
	RequestBody map[string]any `yaml:"requestBody,omitempty"`
	Responses   map[string]any `yaml:"responses"`
}

type param struct {
	Name        string         `yaml:"name"`
	In          string         `yaml:"in"`
	Required    bool           `yaml:"required"`
	Description string         `yaml:"description,omitempty"`
	Schema      map[string]any `yaml:"schema,omitempty"`
}

func jsonBody(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"required": true,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{
					"type":       "object",
					"required":   required,
					"properties": props,
				},
			},
		},
	}
}

func respMessage() map[string]any {
	return map[string]any{"description": "Confirmation message"}
}

func respProblem(desc string) map[string]any {
	return map[string]any{"description": desc + " (application/problem+json)"}
}

func buildSpec() spec {
	emailProp := map[string]any{"type": "string", "format": "email"}
	platformParam := param{
		Name: "platform", In: "query",
		Description: "Platform filter, defaults to ios",
		Schema:      map[string]any{"type": "string", "enum": []string{"ios", "android", "web"}},
	}

	return spec{
		OpenAPI: "3.1.0",
		Info: info{
			Title:       "Mobbin Proxy API",
			Description: "Thin proxy that logs in to the Mobbin backend and forwards app search and listing queries.",
			Version:     "1.0.0",
		},
		Servers: []server{{URL: "http://localhost:8080"}},
		Paths: map[string]any{
			"/health": map[string]any{
				"get": operation{
					Summary:   "Health check",
					Tags:      []string{"system"},
					Responses: map[string]any{"200": map[string]any{"description": "Service status"}},
				},
			},
			"/api/v1/login/send-code": map[string]any{
				"post": operation{
					Summary:     "Send a one-time login code",
					Description: "First step of the OTP flow. The code arrives by email.",
					Tags:        []string{"auth"},
					RequestBody: jsonBody([]string{"email"}, map[string]any{"email": emailProp}),
					Responses: map[string]any{
						"200": respMessage(),
						"400": respProblem("Invalid email"),
						"502": respProblem("Upstream failure"),
					},
				},
			},
			"/api/v1/login/verify": map[string]any{
				"post": operation{
					Summary:     "Verify a one-time code and log in",
					Description: "Second step of the OTP flow. On success the service holds a session and data routes open up.",
					Tags:        []string{"auth"},
					RequestBody: jsonBody([]string{"email", "code"}, map[string]any{
						"email": emailProp,
						"code":  map[string]any{"type": "string"},
					}),
					Responses: map[string]any{
						"200": respMessage(),
						"400": respProblem("Invalid request"),
						"401": respProblem("Verification failed"),
					},
				},
			},
			"/api/v1/login/password": map[string]any{
				"post": operation{
					Summary:     "Log in with email and password",
					Description: "Only for accounts with a password set on the upstream service.",
					Tags:        []string{"auth"},
					RequestBody: jsonBody([]string{"email", "password"}, map[string]any{
						"email":    emailProp,
						"password": map[string]any{"type": "string"},
					}),
					Responses: map[string]any{
						"200": respMessage(),
						"400": respProblem("Invalid request"),
						"401": respProblem("Login failed"),
					},
				},
			},
			"/api/v1/apps/search": map[string]any{
				"get": operation{
					Summary:     "Search apps",
					Description: "Full-text search over app names with a company-name fallback. Requires a prior login.",
					Tags:        []string{"apps"},
					Parameters: []param{
						{Name: "q", In: "query", Required: true, Description: "Search query", Schema: map[string]any{"type": "string"}},
						platformParam,
					},
					Responses: map[string]any{
						"200": map[string]any{"description": "List of app records (possibly empty)"},
						"403": respProblem("No session"),
						"502": respProblem("Upstream failure"),
					},
				},
			},
			"/api/v1/apps/latest": map[string]any{
				"get": operation{
					Summary:     "List latest apps",
					Description: "Most recently updated apps, newest first. Requires a prior login.",
					Tags:        []string{"apps"},
					Parameters: []param{
						{Name: "limit", In: "query", Description: "Max records, 1-100, default 20", Schema: map[string]any{"type": "integer"}},
						platformParam,
					},
					Responses: map[string]any{
						"200": map[string]any{"description": "List of app records"},
						"403": respProblem("No session"),
						"502": respProblem("Upstream failure"),
					},
				},
			},
		},
	}
}

func main() {
	out := flag.String("out", "docs/openapi.yaml", "output file path")
	flag.Parse()

	data, err := yaml.Marshal(buildSpec())
	if err != nil {
		log.Fatalf("Failed to marshal spec: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0750); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := os.WriteFile(*out, data, 0600); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	log.Printf("Wrote %s", *out)
}
